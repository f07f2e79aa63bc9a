package planning

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kyawhla-commit/prodplan/internal/domain/plans"
	"github.com/kyawhla-commit/prodplan/internal/domain/stock"
)

// Store — единица работы поверх реляционного хранилища. Переходы
// состояний выполняются целиком внутри InTx: либо всё, либо ничего.
type Store interface {
	// GetPlan без блокировок, для чтения/отображения.
	GetPlan(ctx context.Context, id int64) (*plans.Plan, error)

	// LoadInputs — позиции плана с рецептами и живыми остатками,
	// без блокировок (для computeRequirements на отображение).
	LoadInputs(ctx context.Context, planID int64) ([]ItemInput, error)

	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx — операции внутри одной транзакции перехода.
type Tx interface {
	// LockPlan берёт эксклюзивную блокировку строки плана и возвращает
	// его текущее состояние. nil — плана нет.
	LockPlan(ctx context.Context, id int64) (*plans.Plan, error)

	// LockInputs — как LoadInputs, но строки сырья блокируются
	// (в порядке id, чтобы не ловить дедлоки между планами).
	LockInputs(ctx context.Context, planID int64) ([]ItemInput, error)

	// SavePlan пишет статусные и итоговые поля плана.
	SavePlan(ctx context.Context, p *plans.Plan) error

	// DeductMaterial — условное списание: false, если остатка не хватило.
	DeductMaterial(ctx context.Context, materialID int64, qty decimal.Decimal) (bool, error)

	// CreditProduct — приход готового продукта.
	CreditProduct(ctx context.Context, productID int64, qty decimal.Decimal) error

	// FinalizeItem фиксирует фактические количество и стоимость позиции.
	FinalizeItem(ctx context.Context, itemID int64, status plans.ItemStatus, actualQty, actualCost decimal.Decimal) error

	PostMovement(ctx context.Context, mv stock.Movement) error
	RecordUsage(ctx context.Context, u stock.Usage) error
}

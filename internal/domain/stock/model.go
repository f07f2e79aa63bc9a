package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovePurchase         MovementType = "purchase"
	MovePurchaseReversal MovementType = "purchase_reversal"
	MoveUsage            MovementType = "usage"
	MoveAdjustment       MovementType = "adjustment"
	MoveReturn           MovementType = "return"
)

// RefKind — вид документа-основания движения.
type RefKind string

const (
	RefProductionPlan   RefKind = "production_plan"
	RefPurchase         RefKind = "purchase"
	RefOrder            RefKind = "order"
	RefManualAdjustment RefKind = "manual_adjustment"
)

// Reference — ссылка на документ-основание.
type Reference struct {
	Kind RefKind
	ID   int64
}

// Movement — строка журнала движений. Пишется один раз, никогда не правится.
// Заполнено ровно одно из ProductID / RawMaterialID.
type Movement struct {
	ID            int64
	ProductID     *int64
	RawMaterialID *int64
	Type          MovementType
	Quantity      decimal.Decimal // со знаком: приход > 0, расход < 0
	UnitPrice     decimal.Decimal
	Reference     *Reference
	Notes         string
	UserID        *int64
	CreatedAt     time.Time
}

type UsageType string

const (
	UsageProduction UsageType = "production"
	UsageWaste      UsageType = "waste"
)

// Usage — факт расхода сырья под план производства.
type Usage struct {
	ID            int64
	RawMaterialID int64
	PlanID        int64
	ProductID     *int64
	QuantityUsed  decimal.Decimal
	TotalCost     decimal.Decimal
	UsageDate     time.Time
	UsageType     UsageType
	CreatedAt     time.Time
}

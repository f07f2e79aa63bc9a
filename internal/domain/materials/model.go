package materials

import (
	"time"

	"github.com/shopspring/decimal"
)

type RawMaterial struct {
	ID                int64
	Name              string
	Unit              string
	Quantity          decimal.Decimal // может уйти в минус только при ручной корректировке
	CostPerUnit       decimal.Decimal
	MinimumStockLevel decimal.Decimal
	SupplierID        *int64
	Supplier          string // имя поставщика (для отображения)
	Active            bool
	CreatedAt         time.Time
}

func (m *RawMaterial) BelowMinimum() bool {
	return m.Quantity.LessThanOrEqual(m.MinimumStockLevel)
}

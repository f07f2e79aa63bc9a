package products

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                int64
	Name              string
	Unit              string
	Quantity          decimal.Decimal // текущий остаток
	CostPerUnit       decimal.Decimal
	MinimumStockLevel decimal.Decimal
	Active            bool
	CreatedAt         time.Time
}

// BelowMinimum — остаток на минимуме или ниже.
func (p *Product) BelowMinimum() bool {
	return p.Quantity.LessThanOrEqual(p.MinimumStockLevel)
}

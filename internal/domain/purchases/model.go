package purchases

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusReceived Status = "received"
	StatusVoided   Status = "voided"
)

type Purchase struct {
	ID            int64
	RawMaterialID int64
	SupplierID    *int64
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	TotalCost     decimal.Decimal
	Status        Status
	Notes         string
	CreatedBy     *int64
	CreatedAt     time.Time
}

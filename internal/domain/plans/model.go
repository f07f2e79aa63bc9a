package plans

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusApproved   Status = "approved"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Статус движется только вперёд; отмена возможна из любого нетерминального.
var transitions = map[Status][]Status{
	StatusDraft:      {StatusApproved, StatusCancelled},
	StatusApproved:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemCompleted ItemStatus = "completed"
	ItemSkipped   ItemStatus = "skipped" // продукт удалён к моменту завершения
)

type Plan struct {
	ID                 int64
	PlanNumber         string
	Name               string
	Status             Status
	PlannedStartDate   *time.Time
	PlannedEndDate     *time.Time
	ActualStartDate    *time.Time
	ActualEndDate      *time.Time
	TotalEstimatedCost decimal.Decimal
	TotalActualCost    decimal.Decimal
	Notes              string
	CreatedBy          *int64
	ApprovedBy         *int64
	ApprovedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Items []Item
}

type Item struct {
	ID                    int64
	PlanID                int64
	ProductID             int64
	PlannedQuantity       decimal.Decimal
	ActualQuantity        *decimal.Decimal
	EstimatedMaterialCost decimal.Decimal
	ActualMaterialCost    *decimal.Decimal
	Status                ItemStatus
	Priority              int
	CreatedAt             time.Time
}

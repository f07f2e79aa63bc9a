package plans

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kyawhla-commit/prodplan/internal/sequence"
)

type Repo struct {
	pool *pgxpool.Pool
	seq  *sequence.Generator
}

func NewRepo(pool *pgxpool.Pool, seq *sequence.Generator) *Repo {
	return &Repo{pool: pool, seq: seq}
}

type NewItem struct {
	ProductID             int64
	PlannedQuantity       decimal.Decimal
	EstimatedMaterialCost decimal.Decimal
	Priority              int
}

// Create создаёт план в draft вместе с позициями. Номер берём из
// sequence; на случай гонки по уникальному plan_number — одна повторная
// попытка с новым номером.
func (r *Repo) Create(ctx context.Context, createdBy *int64, name, notes string, plannedStart, plannedEnd *time.Time, totalEstimated decimal.Decimal, items []NewItem) (*Plan, error) {
	var p *Plan
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		p, err = r.create(ctx, createdBy, name, notes, plannedStart, plannedEnd, totalEstimated, items)
		if err == nil || !isUniqueViolation(err) {
			return p, err
		}
	}
	return nil, err
}

func (r *Repo) create(ctx context.Context, createdBy *int64, name, notes string, plannedStart, plannedEnd *time.Time, totalEstimated decimal.Decimal, items []NewItem) (*Plan, error) {
	number, err := r.seq.NextPlanNumber(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var p Plan
	if err = tx.QueryRow(ctx, `
		INSERT INTO production_plans
			(plan_number, name, notes, planned_start_date, planned_end_date, total_estimated_cost, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+planCols+`
	`, number, name, notes, plannedStart, plannedEnd, totalEstimated, createdBy).Scan(planDest(&p)...); err != nil {
		return nil, err
	}

	for _, it := range items {
		var item Item
		if err = tx.QueryRow(ctx, `
			INSERT INTO production_plan_items
				(plan_id, product_id, planned_quantity, estimated_material_cost, priority)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING `+itemCols+`
		`, p.ID, it.ProductID, it.PlannedQuantity, it.EstimatedMaterialCost, it.Priority).Scan(itemDest(&item)...); err != nil {
			return nil, err
		}
		p.Items = append(p.Items, item)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+planCols+` FROM production_plans WHERE id = $1`, id)
	var p Plan
	if err := row.Scan(planDest(&p)...); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

func (r *Repo) List(ctx context.Context, status *Status, limit int) ([]Plan, error) {
	q := `SELECT ` + planCols + ` FROM production_plans`
	args := []any{}
	if status != nil {
		q += ` WHERE status = $1`
		args = append(args, *status)
	}
	q += ` ORDER BY id DESC`
	if limit > 0 {
		args = append(args, limit)
		if status != nil {
			q += ` LIMIT $2`
		} else {
			q += ` LIMIT $1`
		}
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(planDest(&p)...); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) listItems(ctx context.Context, planID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemCols+` FROM production_plan_items WHERE plan_id = $1 ORDER BY id
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(itemDest(&it)...); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

const planCols = `
	id, plan_number, name, status, planned_start_date, planned_end_date,
	actual_start_date, actual_end_date, total_estimated_cost, total_actual_cost,
	notes, created_by, approved_by, approved_at, created_at, updated_at
`

func planDest(p *Plan) []any {
	return []any{
		&p.ID, &p.PlanNumber, &p.Name, &p.Status, &p.PlannedStartDate, &p.PlannedEndDate,
		&p.ActualStartDate, &p.ActualEndDate, &p.TotalEstimatedCost, &p.TotalActualCost,
		&p.Notes, &p.CreatedBy, &p.ApprovedBy, &p.ApprovedAt, &p.CreatedAt, &p.UpdatedAt,
	}
}

const itemCols = `
	id, plan_id, product_id, planned_quantity, actual_quantity,
	estimated_material_cost, actual_material_cost, status, priority, created_at
`

func itemDest(it *Item) []any {
	return []any{
		&it.ID, &it.PlanID, &it.ProductID, &it.PlannedQuantity, &it.ActualQuantity,
		&it.EstimatedMaterialCost, &it.ActualMaterialCost, &it.Status, &it.Priority, &it.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package planning

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kyawhla-commit/prodplan/internal/domain/plans"
	"github.com/kyawhla-commit/prodplan/internal/domain/recipes"
	"github.com/kyawhla-commit/prodplan/internal/domain/stock"
)

// PgStore — постгресовая реализация Store.
type PgStore struct{ pool *pgxpool.Pool }

func NewPgStore(pool *pgxpool.Pool) *PgStore { return &PgStore{pool: pool} }

var _ Store = (*PgStore)(nil)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PgStore) GetPlan(ctx context.Context, id int64) (*plans.Plan, error) {
	return loadPlan(ctx, s.pool, id, false)
}

func (s *PgStore) LoadInputs(ctx context.Context, planID int64) ([]ItemInput, error) {
	return loadInputs(ctx, s.pool, planID)
}

func (s *PgStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct{ tx pgx.Tx }

var _ Tx = (*pgTx)(nil)

func (t *pgTx) LockPlan(ctx context.Context, id int64) (*plans.Plan, error) {
	return loadPlan(ctx, t.tx, id, true)
}

func (t *pgTx) LockInputs(ctx context.Context, planID int64) ([]ItemInput, error) {
	// блокируем строки сырья в порядке id, чтобы конкурентные завершения
	// разных планов с общими материалами не взаимоблокировались
	rows, err := t.tx.Query(ctx, `
		SELECT m.id FROM raw_materials m
		WHERE m.id IN (
			SELECT e.raw_material_id
			FROM product_raw_materials e
			JOIN production_plan_items i ON i.product_id = e.product_id
			WHERE i.plan_id = $1
		)
		ORDER BY m.id
		FOR UPDATE
	`, planID)
	if err != nil {
		return nil, err
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return loadInputs(ctx, t.tx, planID)
}

func (t *pgTx) SavePlan(ctx context.Context, p *plans.Plan) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE production_plans
		SET status = $2,
		    actual_start_date = $3,
		    actual_end_date = $4,
		    total_actual_cost = $5,
		    approved_by = $6,
		    approved_at = $7,
		    updated_at = now()
		WHERE id = $1
	`, p.ID, p.Status, p.ActualStartDate, p.ActualEndDate, p.TotalActualCost, p.ApprovedBy, p.ApprovedAt)
	return err
}

// DeductMaterial — условное списание: не проходит, если остатка меньше
// запрошенного. Страховка поверх проверки достаточности.
func (t *pgTx) DeductMaterial(ctx context.Context, materialID int64, qty decimal.Decimal) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE raw_materials
		SET quantity = quantity - $2
		WHERE id = $1 AND quantity >= $2
	`, materialID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (t *pgTx) CreditProduct(ctx context.Context, productID int64, qty decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE products SET quantity = quantity + $2 WHERE id = $1
	`, productID, qty)
	return err
}

func (t *pgTx) FinalizeItem(ctx context.Context, itemID int64, status plans.ItemStatus, actualQty, actualCost decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE production_plan_items
		SET status = $2, actual_quantity = $3, actual_material_cost = $4
		WHERE id = $1
	`, itemID, status, actualQty, actualCost)
	return err
}

func (t *pgTx) PostMovement(ctx context.Context, mv stock.Movement) error {
	_, err := stock.InsertTx(ctx, t.tx, mv)
	return err
}

func (t *pgTx) RecordUsage(ctx context.Context, u stock.Usage) error {
	_, err := stock.RecordUsageTx(ctx, t.tx, u)
	return err
}

func loadPlan(ctx context.Context, q querier, id int64, lock bool) (*plans.Plan, error) {
	sql := `
		SELECT id, plan_number, name, status, planned_start_date, planned_end_date,
		       actual_start_date, actual_end_date, total_estimated_cost, total_actual_cost,
		       notes, created_by, approved_by, approved_at, created_at, updated_at
		FROM production_plans
		WHERE id = $1
	`
	if lock {
		sql += ` FOR UPDATE`
	}

	var p plans.Plan
	if err := q.QueryRow(ctx, sql, id).Scan(
		&p.ID, &p.PlanNumber, &p.Name, &p.Status, &p.PlannedStartDate, &p.PlannedEndDate,
		&p.ActualStartDate, &p.ActualEndDate, &p.TotalEstimatedCost, &p.TotalActualCost,
		&p.Notes, &p.CreatedBy, &p.ApprovedBy, &p.ApprovedAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT id, plan_id, product_id, planned_quantity, actual_quantity,
		       estimated_material_cost, actual_material_cost, status, priority, created_at
		FROM production_plan_items
		WHERE plan_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it plans.Item
		if err := rows.Scan(
			&it.ID, &it.PlanID, &it.ProductID, &it.PlannedQuantity, &it.ActualQuantity,
			&it.EstimatedMaterialCost, &it.ActualMaterialCost, &it.Status, &it.Priority, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		p.Items = append(p.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

func loadInputs(ctx context.Context, q querier, planID int64) ([]ItemInput, error) {
	rows, err := q.Query(ctx, `
		SELECT i.id, i.product_id, i.planned_quantity, i.actual_quantity,
		       COALESCE(p.name, ''), (p.id IS NULL)
		FROM production_plan_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.plan_id = $1
		ORDER BY i.id
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ItemInput
	productIDs := map[int64]bool{}
	for rows.Next() {
		var it ItemInput
		if err := rows.Scan(&it.ItemID, &it.ProductID, &it.PlannedQuantity, &it.ActualQuantity, &it.ProductName, &it.ProductMissing); err != nil {
			return nil, err
		}
		if !it.ProductMissing {
			productIDs[it.ProductID] = true
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(productIDs) == 0 {
		return items, nil
	}

	ids := make([]int64, 0, len(productIDs))
	for id := range productIDs {
		ids = append(ids, id)
	}

	lineRows, err := q.Query(ctx, `
		SELECT e.product_id, e.raw_material_id, e.quantity_required, e.unit, e.cost_per_unit,
		       e.waste_percentage, e.is_primary, e.sequence_order,
		       m.name, m.unit, m.cost_per_unit, m.quantity
		FROM product_raw_materials e
		JOIN raw_materials m ON m.id = e.raw_material_id
		WHERE e.product_id = ANY($1)
		ORDER BY e.product_id, e.sequence_order, e.raw_material_id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()

	linesByProduct := map[int64][]recipes.LoadedLine{}
	for lineRows.Next() {
		var l recipes.LoadedLine
		if err := lineRows.Scan(
			&l.ProductID, &l.RawMaterialID, &l.QuantityRequired, &l.Unit, &l.CostPerUnit,
			&l.WastePercentage, &l.IsPrimary, &l.SequenceOrder,
			&l.MaterialName, &l.MaterialUnit, &l.MaterialCost, &l.Available,
		); err != nil {
			return nil, err
		}
		linesByProduct[l.ProductID] = append(linesByProduct[l.ProductID], l)
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Lines = linesByProduct[items[i].ProductID]
	}
	return items, nil
}

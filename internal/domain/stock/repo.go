package stock

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kyawhla-commit/prodplan/internal/infra/metrics"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// InsertTx пишет движение внутри чужой транзакции (завершение плана, закупка).
func InsertTx(ctx context.Context, tx pgx.Tx, mv Movement) (int64, error) {
	var refKind *RefKind
	var refID *int64
	if mv.Reference != nil {
		refKind = &mv.Reference.Kind
		refID = &mv.Reference.ID
	}
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO stock_movements
			(product_id, raw_material_id, type, quantity, unit_price, reference_kind, reference_id, notes, user_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, mv.ProductID, mv.RawMaterialID, mv.Type, mv.Quantity, mv.UnitPrice, refKind, refID, mv.Notes, mv.UserID).Scan(&id)
	if err != nil {
		return 0, err
	}
	metrics.MovementsPosted.WithLabelValues(string(mv.Type)).Inc()
	return id, nil
}

// RecordUsageTx пишет факт расхода сырья под план (вместе с движением usage).
func RecordUsageTx(ctx context.Context, tx pgx.Tx, u Usage) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO raw_material_usages
			(raw_material_id, plan_id, product_id, quantity_used, total_cost, usage_type)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, u.RawMaterialID, u.PlanID, u.ProductID, u.QuantityUsed, u.TotalCost, u.UsageType).Scan(&id)
	return id, err
}

// AdjustMaterial — ручная корректировка остатка сырья. Без проверок:
// остаток может уйти в минус, это осознанный режим для инвентаризации.
func (r *Repo) AdjustMaterial(ctx context.Context, actorID *int64, materialID int64, delta decimal.Decimal, note string) error {
	if delta.IsZero() {
		return fmt.Errorf("delta must be non-zero")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `
		UPDATE raw_materials SET quantity = quantity + $2 WHERE id = $1
	`, materialID, delta); err != nil {
		return err
	}

	ref := &Reference{Kind: RefManualAdjustment, ID: materialID}
	if _, err = InsertTx(ctx, tx, Movement{
		RawMaterialID: &materialID,
		Type:          MoveAdjustment,
		Quantity:      delta,
		Reference:     ref,
		Notes:         note,
		UserID:        actorID,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AdjustProduct — ручная корректировка остатка продукта.
func (r *Repo) AdjustProduct(ctx context.Context, actorID *int64, productID int64, delta decimal.Decimal, note string) error {
	if delta.IsZero() {
		return fmt.Errorf("delta must be non-zero")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `
		UPDATE products SET quantity = quantity + $2 WHERE id = $1
	`, productID, delta); err != nil {
		return err
	}

	ref := &Reference{Kind: RefManualAdjustment, ID: productID}
	if _, err = InsertTx(ctx, tx, Movement{
		ProductID: &productID,
		Type:      MoveAdjustment,
		Quantity:  delta,
		Reference: ref,
		Notes:     note,
		UserID:    actorID,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ReturnProduct — возврат готового продукта на склад (приход + движение return).
func (r *Repo) ReturnProduct(ctx context.Context, actorID *int64, productID, orderID int64, qty decimal.Decimal, note string) error {
	if !qty.IsPositive() {
		return fmt.Errorf("qty must be > 0")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `
		UPDATE products SET quantity = quantity + $2 WHERE id = $1
	`, productID, qty); err != nil {
		return err
	}

	ref := &Reference{Kind: RefOrder, ID: orderID}
	if _, err = InsertTx(ctx, tx, Movement{
		ProductID: &productID,
		Type:      MoveReturn,
		Quantity:  qty,
		Reference: ref,
		Notes:     note,
		UserID:    actorID,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const movementCols = `
	id, product_id, raw_material_id, type, quantity, unit_price,
	reference_kind, reference_id, notes, user_id, created_at
`

// ListByMaterial — движения по материалу, новые сверху.
func (r *Repo) ListByMaterial(ctx context.Context, materialID int64, limit int) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+movementCols+`
		FROM stock_movements
		WHERE raw_material_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, materialID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListByReference — движения, порождённые одним документом (например, планом).
func (r *Repo) ListByReference(ctx context.Context, ref Reference) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+movementCols+`
		FROM stock_movements
		WHERE reference_kind = $1 AND reference_id = $2
		ORDER BY id
	`, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListUsagesByPlan — расход сырья по плану.
func (r *Repo) ListUsagesByPlan(ctx context.Context, planID int64) ([]Usage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, raw_material_id, plan_id, product_id, quantity_used, total_cost, usage_date, usage_type, created_at
		FROM raw_material_usages
		WHERE plan_id = $1
		ORDER BY id
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.ID, &u.RawMaterialID, &u.PlanID, &u.ProductID, &u.QuantityUsed, &u.TotalCost, &u.UsageDate, &u.UsageType, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func collectMovements(rows pgx.Rows) ([]Movement, error) {
	var out []Movement
	for rows.Next() {
		var mv Movement
		var refKind *RefKind
		var refID *int64
		if err := rows.Scan(
			&mv.ID, &mv.ProductID, &mv.RawMaterialID, &mv.Type, &mv.Quantity, &mv.UnitPrice,
			&refKind, &refID, &mv.Notes, &mv.UserID, &mv.CreatedAt,
		); err != nil {
			return nil, err
		}
		if refKind != nil && refID != nil {
			mv.Reference = &Reference{Kind: *refKind, ID: *refID}
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}

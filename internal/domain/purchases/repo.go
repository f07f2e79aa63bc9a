package purchases

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kyawhla-commit/prodplan/internal/domain/stock"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Receive — приход сырья по закупке: строка закупки, остаток и движение
// пишутся одной транзакцией.
func (r *Repo) Receive(ctx context.Context, actorID *int64, materialID int64, supplierID *int64, qty, unitPrice decimal.Decimal, note string) (*Purchase, error) {
	if !qty.IsPositive() {
		return nil, fmt.Errorf("qty must be > 0")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	total := unitPrice.Mul(qty).Round(4)

	var p Purchase
	if err = tx.QueryRow(ctx, `
		INSERT INTO purchases (raw_material_id, supplier_id, quantity, unit_price, total_cost, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, raw_material_id, supplier_id, quantity, unit_price, total_cost, status, notes, created_by, created_at
	`, materialID, supplierID, qty, unitPrice, total, note, actorID).Scan(
		&p.ID, &p.RawMaterialID, &p.SupplierID, &p.Quantity, &p.UnitPrice, &p.TotalCost, &p.Status, &p.Notes, &p.CreatedBy, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE raw_materials SET quantity = quantity + $2 WHERE id = $1
	`, materialID, qty); err != nil {
		return nil, err
	}

	ref := &stock.Reference{Kind: stock.RefPurchase, ID: p.ID}
	if _, err = stock.InsertTx(ctx, tx, stock.Movement{
		RawMaterialID: &materialID,
		Type:          stock.MovePurchase,
		Quantity:      qty,
		UnitPrice:     unitPrice,
		Reference:     ref,
		Notes:         note,
		UserID:        actorID,
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

// Void аннулирует закупку: компенсирующее движение purchase_reversal
// и списание остатка. Остаток при этом может уйти в минус — это
// неохраняемый путь, как ручная корректировка.
func (r *Repo) Void(ctx context.Context, actorID *int64, purchaseID int64, note string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var p Purchase
	if err = tx.QueryRow(ctx, `
		SELECT id, raw_material_id, quantity, unit_price, status
		FROM purchases WHERE id = $1
		FOR UPDATE
	`, purchaseID).Scan(&p.ID, &p.RawMaterialID, &p.Quantity, &p.UnitPrice, &p.Status); err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("purchase %d not found", purchaseID)
		}
		return err
	}
	if p.Status != StatusReceived {
		return fmt.Errorf("purchase %d already %s", purchaseID, p.Status)
	}

	if _, err = tx.Exec(ctx, `
		UPDATE purchases SET status = 'voided' WHERE id = $1
	`, purchaseID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `
		UPDATE raw_materials SET quantity = quantity - $2 WHERE id = $1
	`, p.RawMaterialID, p.Quantity); err != nil {
		return err
	}

	ref := &stock.Reference{Kind: stock.RefPurchase, ID: p.ID}
	if _, err = stock.InsertTx(ctx, tx, stock.Movement{
		RawMaterialID: &p.RawMaterialID,
		Type:          stock.MovePurchaseReversal,
		Quantity:      p.Quantity.Neg(),
		UnitPrice:     p.UnitPrice,
		Reference:     ref,
		Notes:         note,
		UserID:        actorID,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Purchase, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, raw_material_id, supplier_id, quantity, unit_price, total_cost, status, notes, created_by, created_at
		FROM purchases WHERE id = $1
	`, id)
	var p Purchase
	if err := row.Scan(&p.ID, &p.RawMaterialID, &p.SupplierID, &p.Quantity, &p.UnitPrice, &p.TotalCost, &p.Status, &p.Notes, &p.CreatedBy, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListByMaterial(ctx context.Context, materialID int64, limit int) ([]Purchase, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, raw_material_id, supplier_id, quantity, unit_price, total_cost, status, notes, created_by, created_at
		FROM purchases
		WHERE raw_material_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, materialID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.RawMaterialID, &p.SupplierID, &p.Quantity, &p.UnitPrice, &p.TotalCost, &p.Status, &p.Notes, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

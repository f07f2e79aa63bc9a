package recipes

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Upsert(ctx context.Context, l Line) error {
	if l.QuantityRequired.IsNegative() {
		return fmt.Errorf("quantity_required must be >= 0")
	}
	if l.WastePercentage.IsNegative() || l.WastePercentage.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return fmt.Errorf("waste_percentage must be in [0,100)")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO product_raw_materials
			(product_id, raw_material_id, quantity_required, unit, cost_per_unit, waste_percentage, is_primary, sequence_order)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (product_id, raw_material_id)
		DO UPDATE SET
			quantity_required = EXCLUDED.quantity_required,
			unit              = EXCLUDED.unit,
			cost_per_unit     = EXCLUDED.cost_per_unit,
			waste_percentage  = EXCLUDED.waste_percentage,
			is_primary        = EXCLUDED.is_primary,
			sequence_order    = EXCLUDED.sequence_order
	`, l.ProductID, l.RawMaterialID, l.QuantityRequired, l.Unit, l.CostPerUnit, l.WastePercentage, l.IsPrimary, l.SequenceOrder)
	return err
}

// ListByProduct возвращает рецепт продукта вместе с данными материалов,
// в порядке sequence_order.
func (r *Repo) ListByProduct(ctx context.Context, productID int64) ([]LoadedLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.product_id, e.raw_material_id, e.quantity_required, e.unit, e.cost_per_unit,
		       e.waste_percentage, e.is_primary, e.sequence_order,
		       m.name, m.unit, m.cost_per_unit, m.quantity
		FROM product_raw_materials e
		JOIN raw_materials m ON m.id = e.raw_material_id
		WHERE e.product_id = $1
		ORDER BY e.sequence_order, e.raw_material_id
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoadedLine
	for rows.Next() {
		var l LoadedLine
		if err := rows.Scan(
			&l.ProductID, &l.RawMaterialID, &l.QuantityRequired, &l.Unit, &l.CostPerUnit,
			&l.WastePercentage, &l.IsPrimary, &l.SequenceOrder,
			&l.MaterialName, &l.MaterialUnit, &l.MaterialCost, &l.Available,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, productID, rawMaterialID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM product_raw_materials WHERE product_id=$1 AND raw_material_id=$2
	`, productID, rawMaterialID)
	return err
}

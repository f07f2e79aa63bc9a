package products

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, name, unit string, costPerUnit, minLevel decimal.Decimal) (*Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, unit, cost_per_unit, minimum_stock_level, active)
		VALUES ($1,$2,$3,$4,TRUE)
		RETURNING id, name, unit, quantity, cost_per_unit, minimum_stock_level, active, created_at
	`, name, unit, costPerUnit, minLevel)
	return scanProduct(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, unit, quantity, cost_per_unit, minimum_stock_level, active, created_at
		FROM products WHERE id = $1
	`, id)
	p, err := scanProduct(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Product, error) {
	q := `
		SELECT id, name, unit, quantity, cost_per_unit, minimum_stock_level, active, created_at
		FROM products
	`
	if onlyActive {
		q += ` WHERE active = TRUE`
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Unit, &p.Quantity, &p.CostPerUnit, &p.MinimumStockLevel, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListBelowMinimum — продукты с остатком на минимуме или ниже (для оповещений).
func (r *Repo) ListBelowMinimum(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, unit, quantity, cost_per_unit, minimum_stock_level, active, created_at
		FROM products
		WHERE active = TRUE AND quantity <= minimum_stock_level
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Unit, &p.Quantity, &p.CostPerUnit, &p.MinimumStockLevel, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateCost(ctx context.Context, id int64, costPerUnit decimal.Decimal) error {
	_, err := r.pool.Exec(ctx, `UPDATE products SET cost_per_unit=$2 WHERE id=$1`, id, costPerUnit)
	return err
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE products SET active=$2 WHERE id=$1`, id, active)
	return err
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Unit, &p.Quantity, &p.CostPerUnit, &p.MinimumStockLevel, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

package materials

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, name, unit string, costPerUnit, minLevel decimal.Decimal, supplierID *int64) (*RawMaterial, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO raw_materials (name, unit, cost_per_unit, minimum_stock_level, supplier_id, active)
		VALUES ($1,$2,$3,$4,$5,TRUE)
		RETURNING id, name, unit, quantity, cost_per_unit, minimum_stock_level, supplier_id, active, created_at
	`, name, unit, costPerUnit, minLevel, supplierID)

	var m RawMaterial
	if err := row.Scan(&m.ID, &m.Name, &m.Unit, &m.Quantity, &m.CostPerUnit, &m.MinimumStockLevel, &m.SupplierID, &m.Active, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*RawMaterial, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT m.id, m.name, m.unit, m.quantity, m.cost_per_unit, m.minimum_stock_level,
		       m.supplier_id, COALESCE(s.name,''), m.active, m.created_at
		FROM raw_materials m
		LEFT JOIN suppliers s ON s.id = m.supplier_id
		WHERE m.id = $1
	`, id)
	var m RawMaterial
	if err := row.Scan(
		&m.ID, &m.Name, &m.Unit, &m.Quantity, &m.CostPerUnit, &m.MinimumStockLevel,
		&m.SupplierID, &m.Supplier, &m.Active, &m.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]RawMaterial, error) {
	q := `
		SELECT m.id, m.name, m.unit, m.quantity, m.cost_per_unit, m.minimum_stock_level,
		       m.supplier_id, COALESCE(s.name,''), m.active, m.created_at
		FROM raw_materials m
		LEFT JOIN suppliers s ON s.id = m.supplier_id
	`
	if onlyActive {
		q += ` WHERE m.active = TRUE`
	}
	q += ` ORDER BY m.name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListBelowMinimum — материалы с остатком на минимуме или ниже (для оповещений).
func (r *Repo) ListBelowMinimum(ctx context.Context) ([]RawMaterial, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.name, m.unit, m.quantity, m.cost_per_unit, m.minimum_stock_level,
		       m.supplier_id, COALESCE(s.name,''), m.active, m.created_at
		FROM raw_materials m
		LEFT JOIN suppliers s ON s.id = m.supplier_id
		WHERE m.active = TRUE AND m.quantity <= m.minimum_stock_level
		ORDER BY m.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// SearchByName ищет материалы по части названия/поставщика, без учёта регистра.
func (r *Repo) SearchByName(ctx context.Context, q string, onlyActive bool) ([]RawMaterial, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	like := "%" + strings.ToLower(q) + "%"

	base := `
		SELECT m.id, m.name, m.unit, m.quantity, m.cost_per_unit, m.minimum_stock_level,
		       m.supplier_id, COALESCE(s.name,''), m.active, m.created_at
		FROM raw_materials m
		LEFT JOIN suppliers s ON s.id = m.supplier_id
		WHERE (LOWER(m.name) LIKE $1 OR LOWER(s.name) LIKE $1)
	`
	var rows pgx.Rows
	var err error
	if onlyActive {
		rows, err = r.pool.Query(ctx, base+` AND m.active = TRUE ORDER BY m.name`, like)
	} else {
		rows, err = r.pool.Query(ctx, base+` ORDER BY m.name`, like)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *Repo) UpdateCost(ctx context.Context, id int64, costPerUnit decimal.Decimal) error {
	_, err := r.pool.Exec(ctx, `UPDATE raw_materials SET cost_per_unit=$2 WHERE id=$1`, id, costPerUnit)
	return err
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE raw_materials SET active=$2 WHERE id=$1`, id, active)
	return err
}

func collect(rows pgx.Rows) ([]RawMaterial, error) {
	var out []RawMaterial
	for rows.Next() {
		var m RawMaterial
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Unit, &m.Quantity, &m.CostPerUnit, &m.MinimumStockLevel,
			&m.SupplierID, &m.Supplier, &m.Active, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

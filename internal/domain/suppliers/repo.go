package suppliers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, name, phone, address string) (*Supplier, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, phone, address, active)
		VALUES ($1,$2,$3,TRUE)
		RETURNING id, name, phone, address, active, created_at
	`, name, phone, address)

	var s Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Address, &s.Active, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Supplier, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, phone, address, active, created_at
		FROM suppliers WHERE id = $1
	`, id)
	var s Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Address, &s.Active, &s.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Supplier, error) {
	q := `SELECT id, name, phone, address, active, created_at FROM suppliers`
	if onlyActive {
		q += ` WHERE active = TRUE`
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Address, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE suppliers SET active=$2 WHERE id=$1`, id, active)
	return err
}

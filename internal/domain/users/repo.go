package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, full_name, role, active, created_at, updated_at
		FROM users WHERE id = $1
	`, id)

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Upsert по username. Если пользователь уже manager — не понижаем роль.
func (r *Repo) Upsert(ctx context.Context, username, fullName string, role Role) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, full_name, role)
		VALUES ($1,$2,$3)
		ON CONFLICT (username)
		DO UPDATE SET
			full_name  = EXCLUDED.full_name,
			role       = CASE WHEN users.role = 'manager' THEN users.role ELSE EXCLUDED.role END,
			updated_at = now()
		RETURNING id, username, full_name, role, active, created_at, updated_at
	`, username, fullName, role)

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET active=$2, updated_at=now() WHERE id=$1`, id, active)
	return err
}

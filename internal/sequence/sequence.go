// Package sequence выдаёт человекочитаемые номера документов.
// Счётчик на день живёт в таблице plan_number_counters; уникальный
// индекс на production_plans.plan_number — страховка от гонок.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const planPrefix = "PP"

type Generator struct{ pool *pgxpool.Pool }

func NewGenerator(pool *pgxpool.Pool) *Generator { return &Generator{pool: pool} }

// NextPlanNumber возвращает номер вида PP-20260831-0001.
// Инкремент атомарный (upsert ... returning), поэтому два конкурентных
// вызова никогда не получат один counter.
func (g *Generator) NextPlanNumber(ctx context.Context, now time.Time) (string, error) {
	var n int
	err := g.pool.QueryRow(ctx, `
		INSERT INTO plan_number_counters (day, counter)
		VALUES ($1::date, 1)
		ON CONFLICT (day)
		DO UPDATE SET counter = plan_number_counters.counter + 1
		RETURNING counter
	`, now).Scan(&n)
	if err != nil {
		return "", err
	}
	return Format(planPrefix, now, n), nil
}

func Format(prefix string, day time.Time, n int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), n)
}

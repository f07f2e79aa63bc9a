package planning

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kyawhla-commit/prodplan/internal/domain/plans"
	"github.com/kyawhla-commit/prodplan/internal/domain/recipes"
	"github.com/kyawhla-commit/prodplan/internal/domain/stock"
)

// memStore — хранилище в памяти для тестов переходов. Транзакция
// работает на глубокой копии и сливается обратно только при успехе,
// глобальный мьютекс играет роль блокировок строк.
type memStore struct {
	mu sync.Mutex

	plans     map[int64]*plans.Plan
	materials map[int64]*memMaterial
	products  map[int64]*memProduct
	recipes   map[int64][]recipes.Line // product id -> рёбра

	movements []stock.Movement
	usages    []stock.Usage
}

type memMaterial struct {
	name string
	unit string
	cost decimal.Decimal
	qty  decimal.Decimal
}

type memProduct struct {
	name string
	qty  decimal.Decimal
}

func newMemStore() *memStore {
	return &memStore{
		plans:     map[int64]*plans.Plan{},
		materials: map[int64]*memMaterial{},
		products:  map[int64]*memProduct{},
		recipes:   map[int64][]recipes.Line{},
	}
}

var _ Store = (*memStore)(nil)

func (s *memStore) GetPlan(_ context.Context, id int64) (*plans.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, nil
	}
	cp := clonePlan(p)
	return &cp, nil
}

func (s *memStore) LoadInputs(_ context.Context, planID int64) ([]ItemInput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildInputs(planID), nil
}

func (s *memStore) InTx(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:     s,
		plans:     map[int64]*plans.Plan{},
		materials: map[int64]*memMaterial{},
		products:  map[int64]*memProduct{},
	}
	for id, p := range s.plans {
		cp := clonePlan(p)
		tx.plans[id] = &cp
	}
	for id, m := range s.materials {
		cm := *m
		tx.materials[id] = &cm
	}
	for id, p := range s.products {
		cp := *p
		tx.products[id] = &cp
	}

	if err := fn(tx); err != nil {
		return err // откат: копия выбрасывается
	}

	s.plans = tx.plans
	s.materials = tx.materials
	s.products = tx.products
	s.movements = append(s.movements, tx.movements...)
	s.usages = append(s.usages, tx.usages...)
	return nil
}

func (s *memStore) buildInputs(planID int64) []ItemInput {
	p, ok := s.plans[planID]
	if !ok {
		return nil
	}
	return buildInputs(p, s.products, s.materials, s.recipes)
}

type memTx struct {
	store     *memStore
	plans     map[int64]*plans.Plan
	materials map[int64]*memMaterial
	products  map[int64]*memProduct
	movements []stock.Movement
	usages    []stock.Usage
}

var _ Tx = (*memTx)(nil)

func (t *memTx) LockPlan(_ context.Context, id int64) (*plans.Plan, error) {
	p, ok := t.plans[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (t *memTx) LockInputs(_ context.Context, planID int64) ([]ItemInput, error) {
	p, ok := t.plans[planID]
	if !ok {
		return nil, nil
	}
	return buildInputs(p, t.products, t.materials, t.store.recipes), nil
}

func (t *memTx) SavePlan(_ context.Context, p *plans.Plan) error {
	cp := clonePlan(p)
	t.plans[p.ID] = &cp
	return nil
}

func (t *memTx) DeductMaterial(_ context.Context, materialID int64, qty decimal.Decimal) (bool, error) {
	m, ok := t.materials[materialID]
	if !ok || m.qty.LessThan(qty) {
		return false, nil
	}
	m.qty = m.qty.Sub(qty)
	return true, nil
}

func (t *memTx) CreditProduct(_ context.Context, productID int64, qty decimal.Decimal) error {
	if p, ok := t.products[productID]; ok {
		p.qty = p.qty.Add(qty)
	}
	return nil
}

func (t *memTx) FinalizeItem(_ context.Context, itemID int64, status plans.ItemStatus, actualQty, actualCost decimal.Decimal) error {
	for _, p := range t.plans {
		for i := range p.Items {
			if p.Items[i].ID == itemID {
				p.Items[i].Status = status
				q, c := actualQty, actualCost
				p.Items[i].ActualQuantity = &q
				p.Items[i].ActualMaterialCost = &c
				return nil
			}
		}
	}
	return nil
}

func (t *memTx) PostMovement(_ context.Context, mv stock.Movement) error {
	t.movements = append(t.movements, mv)
	return nil
}

func (t *memTx) RecordUsage(_ context.Context, u stock.Usage) error {
	t.usages = append(t.usages, u)
	return nil
}

func buildInputs(p *plans.Plan, prods map[int64]*memProduct, mats map[int64]*memMaterial, rec map[int64][]recipes.Line) []ItemInput {
	var out []ItemInput
	for _, it := range p.Items {
		in := ItemInput{
			ItemID:          it.ID,
			ProductID:       it.ProductID,
			PlannedQuantity: it.PlannedQuantity,
			ActualQuantity:  it.ActualQuantity,
		}
		prod, ok := prods[it.ProductID]
		if !ok {
			in.ProductMissing = true
			out = append(out, in)
			continue
		}
		in.ProductName = prod.name
		for _, l := range rec[it.ProductID] {
			m := mats[l.RawMaterialID]
			in.Lines = append(in.Lines, recipes.LoadedLine{
				Line:         l,
				MaterialName: m.name,
				MaterialUnit: m.unit,
				MaterialCost: m.cost,
				Available:    m.qty,
			})
		}
		out = append(out, in)
	}
	return out
}

func clonePlan(p *plans.Plan) plans.Plan {
	cp := *p
	cp.Items = make([]plans.Item, len(p.Items))
	copy(cp.Items, p.Items)
	return cp
}

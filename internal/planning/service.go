package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kyawhla-commit/prodplan/internal/domain/plans"
	"github.com/kyawhla-commit/prodplan/internal/domain/stock"
	"github.com/kyawhla-commit/prodplan/internal/domain/users"
	"github.com/kyawhla-commit/prodplan/internal/infra/metrics"
)

type Action string

const (
	ActionApprove  Action = "approve"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Result — исход перехода. Если Shortages непустой, переход отклонён,
// план не изменился и его можно повторить после пополнения склада.
type Result struct {
	Plan      *plans.Plan
	Shortages []Shortage
	Warnings  []string
}

func (r *Result) Refused() bool { return len(r.Shortages) > 0 }

type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Requirements — потребность в сырье по плану против живых остатков.
// Путь только для чтения, блокировок не берёт.
func (s *Service) Requirements(ctx context.Context, planID int64) ([]Requirement, []string, error) {
	items, err := s.store.LoadInputs(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	reqs, warnings := ComputeRequirements(items)
	return reqs, warnings, nil
}

// Transition — общая точка входа для approve/start/complete/cancel.
func (s *Service) Transition(ctx context.Context, actor *users.User, planID int64, action Action) (*Result, error) {
	switch action {
	case ActionApprove:
		return s.Approve(ctx, actor, planID)
	case ActionStart:
		return s.Start(ctx, actor, planID)
	case ActionComplete:
		return s.Complete(ctx, actor, planID, nil)
	case ActionCancel:
		return s.Cancel(ctx, actor, planID)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
}

// Approve: draft -> approved. Требует актора с правом утверждения,
// фиксирует кто и когда утвердил. Склад не трогает.
func (s *Service) Approve(ctx context.Context, actor *users.User, planID int64) (*Result, error) {
	if !actor.CanApprove() {
		return nil, ErrNotAuthorized
	}
	var out *plans.Plan
	err := s.store.InTx(ctx, func(tx Tx) error {
		p, err := s.lockForTransition(ctx, tx, planID, plans.StatusApproved)
		if err != nil {
			return err
		}
		now := s.now()
		p.Status = plans.StatusApproved
		p.ApprovedBy = &actor.ID
		p.ApprovedAt = &now
		out = p
		return tx.SavePlan(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("plan approved", "plan", out.PlanNumber, "approved_by", actor.ID)
	return &Result{Plan: out}, nil
}

// Start: approved -> in_progress, фиксирует фактическое начало.
func (s *Service) Start(ctx context.Context, actor *users.User, planID int64) (*Result, error) {
	var out *plans.Plan
	err := s.store.InTx(ctx, func(tx Tx) error {
		p, err := s.lockForTransition(ctx, tx, planID, plans.StatusInProgress)
		if err != nil {
			return err
		}
		now := s.now()
		p.Status = plans.StatusInProgress
		p.ActualStartDate = &now
		out = p
		return tx.SavePlan(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("plan started", "plan", out.PlanNumber, "actor", actorID(actor))
	return &Result{Plan: out}, nil
}

// Cancel допустим из любого нетерминального статуса. Склад не
// откатывается: до completed ни одно движение не писалось.
func (s *Service) Cancel(ctx context.Context, actor *users.User, planID int64) (*Result, error) {
	var out *plans.Plan
	err := s.store.InTx(ctx, func(tx Tx) error {
		p, err := tx.LockPlan(ctx, planID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrPlanNotFound
		}
		if p.Status.Terminal() {
			return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, p.Status)
		}
		p.Status = plans.StatusCancelled
		out = p
		return tx.SavePlan(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("plan cancelled", "plan", out.PlanNumber, "actor", actorID(actor))
	return &Result{Plan: out}, nil
}

// Complete: in_progress -> completed. Потребность пересчитывается под
// блокировками против живых остатков; при нехватке переход отклоняется
// без единой записи. actuals — фактический выпуск по позициям
// (item id -> количество); отсутствующие позиции идут по плану.
func (s *Service) Complete(ctx context.Context, actor *users.User, planID int64, actuals map[int64]decimal.Decimal) (*Result, error) {
	for itemID, q := range actuals {
		if q.IsNegative() {
			return nil, fmt.Errorf("%w: negative actual quantity for item %d", ErrValidation, itemID)
		}
	}

	result := &Result{}
	err := s.store.InTx(ctx, func(tx Tx) error {
		p, err := tx.LockPlan(ctx, planID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrPlanNotFound
		}
		switch p.Status {
		case plans.StatusInProgress:
			// только отсюда можно завершать
		case plans.StatusCompleted, plans.StatusCancelled:
			// проигранная гонка: кто-то успел раньше
			return ErrConcurrencyConflict
		default:
			return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, p.Status)
		}

		items, err := tx.LockInputs(ctx, planID)
		if err != nil {
			return err
		}
		for i := range items {
			if q, ok := actuals[items[i].ItemID]; ok {
				qq := q
				items[i].ActualQuantity = &qq
			}
		}

		reqs, warnings := ComputeRequirements(items)
		result.Warnings = warnings
		if sh := shortagesOf(reqs); len(sh) > 0 {
			return &shortageOutcome{shortages: sh}
		}

		if err := s.consumeMaterials(ctx, tx, p, actor, reqs); err != nil {
			return err
		}

		now := s.now()
		totalActual, err := s.finalizeItems(ctx, tx, p, actor, items)
		if err != nil {
			return err
		}

		p.Status = plans.StatusCompleted
		p.ActualEndDate = &now
		p.TotalActualCost = totalActual
		result.Plan = p
		return tx.SavePlan(ctx, p)
	})

	var short *shortageOutcome
	switch {
	case err == nil:
		metrics.PlansCompleted.Inc()
		s.log.Info("plan completed", "plan", result.Plan.PlanNumber,
			"actual_cost", result.Plan.TotalActualCost, "actor", actorID(actor))
		return result, nil
	case errors.As(err, &short):
		metrics.CompletionsRejected.WithLabelValues("shortage").Inc()
		s.log.Warn("plan completion refused, insufficient stock",
			"plan_id", planID, "materials", len(short.shortages))
		result.Shortages = short.shortages
		return result, nil
	case errors.Is(err, ErrConcurrencyConflict):
		metrics.CompletionsRejected.WithLabelValues("conflict").Inc()
		return nil, err
	default:
		return nil, err
	}
}

// consumeMaterials списывает сырьё по агрегированной потребности:
// условный decrement + движение usage + строка расхода на каждый материал.
func (s *Service) consumeMaterials(ctx context.Context, tx Tx, p *plans.Plan, actor *users.User, reqs []Requirement) error {
	ref := &stock.Reference{Kind: stock.RefProductionPlan, ID: p.ID}
	for _, req := range reqs {
		qty := req.TotalRequired.Round(2)
		if qty.IsZero() {
			continue
		}
		ok, err := tx.DeductMaterial(ctx, req.RawMaterialID, qty)
		if err != nil {
			return err
		}
		if !ok {
			// потребность проверялась под блокировками, так что сюда
			// попадаем только при страховочном срабатывании условного
			// UPDATE — отдаём как нехватку
			return &shortageOutcome{shortages: []Shortage{{
				RawMaterialID: req.RawMaterialID,
				Name:          req.Name,
				Required:      qty,
				Available:     req.Available,
				Deficit:       Deficit(qty, req.Available),
			}}}
		}

		materialID := req.RawMaterialID
		if err := tx.PostMovement(ctx, stock.Movement{
			RawMaterialID: &materialID,
			Type:          stock.MoveUsage,
			Quantity:      qty.Neg(),
			UnitPrice:     req.CostPerUnit,
			Reference:     ref,
			Notes:         "production " + p.PlanNumber,
			UserID:        actorIDPtr(actor),
		}); err != nil {
			return err
		}
		if err := tx.RecordUsage(ctx, stock.Usage{
			RawMaterialID: materialID,
			PlanID:        p.ID,
			QuantityUsed:  qty,
			TotalCost:     req.EstimatedCost.Round(4),
			UsageType:     stock.UsageProduction,
		}); err != nil {
			return err
		}
	}
	return nil
}

// finalizeItems приходует выпуск и фиксирует фактические значения позиций.
func (s *Service) finalizeItems(ctx context.Context, tx Tx, p *plans.Plan, actor *users.User, items []ItemInput) (decimal.Decimal, error) {
	ref := &stock.Reference{Kind: stock.RefProductionPlan, ID: p.ID}
	total := decimal.Zero
	for _, it := range items {
		if it.ProductMissing {
			// ReferentialGap: позиция пропущена, остальной план не блокируем
			if err := tx.FinalizeItem(ctx, it.ItemID, plans.ItemSkipped, decimal.Zero, decimal.Zero); err != nil {
				return decimal.Zero, err
			}
			continue
		}

		produced := it.Quantity().Round(2)
		itemCost := EstimateItemCost(it.PlannedQuantity, it.Lines)

		if produced.IsPositive() {
			if err := tx.CreditProduct(ctx, it.ProductID, produced); err != nil {
				return decimal.Zero, err
			}
			productID := it.ProductID
			if err := tx.PostMovement(ctx, stock.Movement{
				ProductID: &productID,
				Type:      stock.MoveAdjustment,
				Quantity:  produced,
				Reference: ref,
				Notes:     "production output " + p.PlanNumber,
				UserID:    actorIDPtr(actor),
			}); err != nil {
				return decimal.Zero, err
			}
		}

		if err := tx.FinalizeItem(ctx, it.ItemID, plans.ItemCompleted, produced, itemCost); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(itemCost)
	}
	return total.Round(4), nil
}

// lockForTransition — общий путь approve/start: блокировка + проверка
// таблицы переходов уже под блокировкой.
func (s *Service) lockForTransition(ctx context.Context, tx Tx, planID int64, to plans.Status) (*plans.Plan, error) {
	p, err := tx.LockPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlanNotFound
	}
	if !p.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, to, p.Status)
	}
	return p, nil
}

// shortageOutcome путешествует как error только чтобы откатить
// транзакцию; наружу превращается в Result.Shortages.
type shortageOutcome struct {
	shortages []Shortage
}

func (e *shortageOutcome) Error() string {
	return fmt.Sprintf("insufficient stock for %d materials", len(e.shortages))
}

func actorID(actor *users.User) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}

func actorIDPtr(actor *users.User) *int64 {
	if actor == nil {
		return nil
	}
	return &actor.ID
}

// Package planning — расчёт потребности в сырье и жизненный цикл
// плана производства.
package planning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kyawhla-commit/prodplan/internal/domain/recipes"
)

// ItemInput — позиция плана, загруженная вместе с рецептом продукта
// и живыми остатками сырья.
type ItemInput struct {
	ItemID          int64
	ProductID       int64
	ProductName     string
	ProductMissing  bool // продукт удалён/не найден — позиция пропускается
	PlannedQuantity decimal.Decimal
	ActualQuantity  *decimal.Decimal
	Lines           []recipes.LoadedLine
}

// Quantity — количество к производству: actual, если проставлен, иначе planned.
func (it ItemInput) Quantity() decimal.Decimal {
	if it.ActualQuantity != nil {
		return *it.ActualQuantity
	}
	return it.PlannedQuantity
}

// Requirement — агрегированная потребность по одному материалу.
type Requirement struct {
	RawMaterialID    int64
	Name             string
	Unit             string
	QuantityRequired decimal.Decimal // без потерь
	TotalRequired    decimal.Decimal // с потерями
	Available        decimal.Decimal
	CostPerUnit      decimal.Decimal
	EstimatedCost    decimal.Decimal
	IsSufficient     bool
}

var hundred = decimal.NewFromInt(100)

// ComputeRequirements считает потребность в сырье по позициям плана.
// Повторы одного материала суммируются; порядок результата — порядок
// первого появления материала, поэтому на одинаковом входе выход
// детерминирован. Позиции с отсутствующим продуктом пропускаются и
// попадают в warnings, расчёт из-за них не падает.
func ComputeRequirements(items []ItemInput) ([]Requirement, []string) {
	byMaterial := make(map[int64]*Requirement)
	var order []int64
	var warnings []string

	for _, it := range items {
		if it.ProductMissing {
			warnings = append(warnings, fmt.Sprintf("item %d: product %d no longer exists, skipped", it.ItemID, it.ProductID))
			continue
		}
		qty := it.PlannedQuantity // нулевое значение = позиция ничего не вносит
		if qty.IsZero() {
			continue
		}

		for _, l := range it.Lines {
			required := l.QuantityRequired.Mul(qty)

			waste := decimal.Zero
			if l.WastePercentage.IsPositive() {
				waste = required.Mul(l.WastePercentage.Div(hundred))
			}
			total := required.Add(waste)

			unitCost := l.EffectiveCost()
			cost := total.Mul(unitCost)

			req, ok := byMaterial[l.RawMaterialID]
			if !ok {
				req = &Requirement{
					RawMaterialID: l.RawMaterialID,
					Name:          l.MaterialName,
					Unit:          l.MaterialUnit,
					Available:     l.Available,
					CostPerUnit:   unitCost,
				}
				byMaterial[l.RawMaterialID] = req
				order = append(order, l.RawMaterialID)
			}
			req.QuantityRequired = req.QuantityRequired.Add(required)
			req.TotalRequired = req.TotalRequired.Add(total)
			req.EstimatedCost = req.EstimatedCost.Add(cost)
		}
	}

	out := make([]Requirement, 0, len(order))
	for _, id := range order {
		req := byMaterial[id]
		req.IsSufficient = IsSufficient(req.TotalRequired, req.Available)
		out = append(out, *req)
	}
	return out, warnings
}

// EstimateItemCost — плановая стоимость материалов одной позиции.
func EstimateItemCost(qty decimal.Decimal, lines []recipes.LoadedLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		required := l.QuantityRequired.Mul(qty)
		if l.WastePercentage.IsPositive() {
			required = required.Add(required.Mul(l.WastePercentage.Div(hundred)))
		}
		total = total.Add(required.Mul(l.EffectiveCost()))
	}
	return total.Round(4)
}

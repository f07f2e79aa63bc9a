package recipes

import "github.com/shopspring/decimal"

// Line — ребро рецепта: сколько сырья уходит на единицу продукта.
// cost_per_unit здесь переопределяет цену самого материала, если задан.
type Line struct {
	ProductID        int64
	RawMaterialID    int64
	QuantityRequired decimal.Decimal
	Unit             string
	CostPerUnit      *decimal.Decimal
	WastePercentage  decimal.Decimal // [0,100)
	IsPrimary        bool
	SequenceOrder    int
}

// LoadedLine — ребро вместе с данными материала (для калькулятора и отображения).
type LoadedLine struct {
	Line
	MaterialName string
	MaterialUnit string
	MaterialCost decimal.Decimal // cost_per_unit материала
	Available    decimal.Decimal // текущий остаток материала
}

// EffectiveCost — цена за единицу с учётом переопределения на ребре.
func (l LoadedLine) EffectiveCost() decimal.Decimal {
	if l.CostPerUnit != nil {
		return *l.CostPerUnit
	}
	return l.MaterialCost
}

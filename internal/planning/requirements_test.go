package planning

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kyawhla-commit/prodplan/internal/domain/recipes"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(materialID int64, qtyRequired, waste, materialCost, available string) recipes.LoadedLine {
	return recipes.LoadedLine{
		Line: recipes.Line{
			RawMaterialID:    materialID,
			QuantityRequired: dec(qtyRequired),
			WastePercentage:  dec(waste),
		},
		MaterialName: "material",
		MaterialUnit: "kg",
		MaterialCost: dec(materialCost),
		Available:    dec(available),
	}
}

func TestComputeRequirements_EmptyPlan(t *testing.T) {
	reqs, warnings := ComputeRequirements(nil)
	if len(reqs) != 0 {
		t.Fatalf("expected no requirements, got %d", len(reqs))
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
}

func TestComputeRequirements_WasteFormula(t *testing.T) {
	// 10 единиц продукта, 2 кг материала на единицу, 5% потерь:
	// 20 без потерь, 21 с потерями, 2100 по цене 100
	items := []ItemInput{{
		ItemID:          1,
		ProductID:       1,
		PlannedQuantity: dec("10"),
		Lines:           []recipes.LoadedLine{line(7, "2", "5", "100", "30")},
	}}

	reqs, _ := ComputeRequirements(items)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement, got %d", len(reqs))
	}
	r := reqs[0]
	if !r.QuantityRequired.Equal(dec("20")) {
		t.Errorf("quantity_required = %s, want 20", r.QuantityRequired)
	}
	if !r.TotalRequired.Equal(dec("21")) {
		t.Errorf("total_required = %s, want 21", r.TotalRequired)
	}
	if !r.EstimatedCost.Equal(dec("2100")) {
		t.Errorf("estimated_cost = %s, want 2100", r.EstimatedCost)
	}
	if !r.IsSufficient {
		t.Error("expected sufficient with available=30")
	}
}

func TestComputeRequirements_WasteExact(t *testing.T) {
	// total_required = qty_required*planned * (1 + waste/100), без округления
	cases := []struct{ waste, want string }{
		{"0", "20"},
		{"0.01", "20.002"},
		{"12.5", "22.5"},
		{"99.99", "39.998"},
	}
	for _, tc := range cases {
		items := []ItemInput{{
			ItemID:          1,
			ProductID:       1,
			PlannedQuantity: dec("10"),
			Lines:           []recipes.LoadedLine{line(7, "2", tc.waste, "1", "100")},
		}}
		reqs, _ := ComputeRequirements(items)
		if !reqs[0].TotalRequired.Equal(dec(tc.want)) {
			t.Errorf("waste=%s: total_required = %s, want %s", tc.waste, reqs[0].TotalRequired, tc.want)
		}
	}
}

func TestComputeRequirements_NegativeWasteTreatedAsZero(t *testing.T) {
	items := []ItemInput{{
		ItemID:          1,
		ProductID:       1,
		PlannedQuantity: dec("10"),
		Lines:           []recipes.LoadedLine{line(7, "2", "-5", "1", "100")},
	}}
	reqs, _ := ComputeRequirements(items)
	if !reqs[0].TotalRequired.Equal(dec("20")) {
		t.Errorf("total_required = %s, want 20 (negative waste ignored)", reqs[0].TotalRequired)
	}
}

func TestComputeRequirements_SameMaterialSummed(t *testing.T) {
	a := ItemInput{
		ItemID: 1, ProductID: 1, PlannedQuantity: dec("3"),
		Lines: []recipes.LoadedLine{line(7, "2", "0", "10", "100")},
	}
	b := ItemInput{
		ItemID: 2, ProductID: 2, PlannedQuantity: dec("5"),
		Lines: []recipes.LoadedLine{line(7, "4", "10", "10", "100")},
	}

	merged, _ := ComputeRequirements([]ItemInput{a, b})
	onlyA, _ := ComputeRequirements([]ItemInput{a})
	onlyB, _ := ComputeRequirements([]ItemInput{b})

	if len(merged) != 1 {
		t.Fatalf("expected one aggregated requirement, got %d", len(merged))
	}
	wantQty := onlyA[0].QuantityRequired.Add(onlyB[0].QuantityRequired)
	wantTotal := onlyA[0].TotalRequired.Add(onlyB[0].TotalRequired)
	wantCost := onlyA[0].EstimatedCost.Add(onlyB[0].EstimatedCost)

	if !merged[0].QuantityRequired.Equal(wantQty) {
		t.Errorf("quantity_required = %s, want %s", merged[0].QuantityRequired, wantQty)
	}
	if !merged[0].TotalRequired.Equal(wantTotal) {
		t.Errorf("total_required = %s, want %s", merged[0].TotalRequired, wantTotal)
	}
	if !merged[0].EstimatedCost.Equal(wantCost) {
		t.Errorf("estimated_cost = %s, want %s", merged[0].EstimatedCost, wantCost)
	}
}

func TestComputeRequirements_FirstSeenOrderStable(t *testing.T) {
	items := []ItemInput{
		{ItemID: 1, ProductID: 1, PlannedQuantity: dec("1"), Lines: []recipes.LoadedLine{
			line(5, "1", "0", "1", "10"),
			line(3, "1", "0", "1", "10"),
		}},
		{ItemID: 2, ProductID: 2, PlannedQuantity: dec("1"), Lines: []recipes.LoadedLine{
			line(9, "1", "0", "1", "10"),
			line(5, "1", "0", "1", "10"),
		}},
	}
	for run := 0; run < 5; run++ {
		reqs, _ := ComputeRequirements(items)
		got := []int64{reqs[0].RawMaterialID, reqs[1].RawMaterialID, reqs[2].RawMaterialID}
		want := []int64{5, 3, 9}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("run %d: order %v, want %v", run, got, want)
			}
		}
	}
}

func TestComputeRequirements_MissingProductSkipped(t *testing.T) {
	items := []ItemInput{
		{ItemID: 1, ProductID: 100, ProductMissing: true, PlannedQuantity: dec("10")},
		{ItemID: 2, ProductID: 2, PlannedQuantity: dec("1"), Lines: []recipes.LoadedLine{line(7, "2", "0", "1", "10")}},
	}
	reqs, warnings := ComputeRequirements(items)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement, got %d", len(reqs))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
}

func TestComputeRequirements_ZeroQuantityContributesNothing(t *testing.T) {
	items := []ItemInput{{
		ItemID: 1, ProductID: 1, PlannedQuantity: decimal.Zero,
		Lines: []recipes.LoadedLine{line(7, "2", "5", "1", "10")},
	}}
	reqs, _ := ComputeRequirements(items)
	if len(reqs) != 0 {
		t.Fatalf("expected no requirements for zero quantity, got %d", len(reqs))
	}
}

func TestComputeRequirements_CostOverrideOnEdge(t *testing.T) {
	override := dec("250")
	l := line(7, "2", "0", "100", "10")
	l.CostPerUnit = &override

	items := []ItemInput{{ItemID: 1, ProductID: 1, PlannedQuantity: dec("1"), Lines: []recipes.LoadedLine{l}}}
	reqs, _ := ComputeRequirements(items)
	if !reqs[0].CostPerUnit.Equal(override) {
		t.Errorf("cost_per_unit = %s, want override 250", reqs[0].CostPerUnit)
	}
	if !reqs[0].EstimatedCost.Equal(dec("500")) {
		t.Errorf("estimated_cost = %s, want 500", reqs[0].EstimatedCost)
	}
}

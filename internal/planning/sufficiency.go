package planning

import "github.com/shopspring/decimal"

// IsSufficient — хватает ли остатка на потребность. Чистая функция,
// используется и для отображения, и как жёсткий гейт завершения плана.
func IsSufficient(required, available decimal.Decimal) bool {
	return available.GreaterThanOrEqual(required)
}

// Deficit — недостача (0, если хватает).
func Deficit(required, available decimal.Decimal) decimal.Decimal {
	if IsSufficient(required, available) {
		return decimal.Zero
	}
	return required.Sub(available)
}

// Shortage — нехватка одного материала при попытке завершить план.
type Shortage struct {
	RawMaterialID int64
	Name          string
	Required      decimal.Decimal
	Available     decimal.Decimal
	Deficit       decimal.Decimal
}

func shortagesOf(reqs []Requirement) []Shortage {
	var out []Shortage
	for _, r := range reqs {
		if r.IsSufficient {
			continue
		}
		out = append(out, Shortage{
			RawMaterialID: r.RawMaterialID,
			Name:          r.Name,
			Required:      r.TotalRequired,
			Available:     r.Available,
			Deficit:       Deficit(r.TotalRequired, r.Available),
		})
	}
	return out
}

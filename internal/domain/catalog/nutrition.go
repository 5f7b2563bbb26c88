package catalog

import (
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// NutritionForm tells whether nutrition values are per 100 g or per 100 ml
type NutritionForm string

const (
	NutritionFormSolid  NutritionForm = "solid"
	NutritionFormLiquid NutritionForm = "liquid"
)

// IsValid checks if the form is known
func (f NutritionForm) IsValid() bool {
	return f == NutritionFormSolid || f == NutritionFormLiquid
}

// NutritionFacts holds the label values of a product, per 100 g (solid)
// or per 100 ml (liquid).
type NutritionFacts struct {
	Form          NutritionForm
	EnergyKcal    decimal.Decimal
	SodiumMg      decimal.Decimal
	SugarG        decimal.Decimal
	SaturatedFatG decimal.Decimal
	TransFatG     decimal.Decimal
}

// Validate checks the nutrition facts are usable for octagon computation
func (n NutritionFacts) Validate() error {
	if !n.Form.IsValid() {
		return shared.NewDomainError("INVALID_NUTRITION", "Nutrition form must be solid or liquid")
	}
	values := []struct {
		name  string
		value decimal.Decimal
	}{
		{"energy_kcal", n.EnergyKcal},
		{"sodium_mg", n.SodiumMg},
		{"sugar_g", n.SugarG},
		{"saturated_fat_g", n.SaturatedFatG},
		{"trans_fat_g", n.TransFatG},
	}
	for _, v := range values {
		if v.value.IsNegative() {
			return shared.NewDomainError("INVALID_NUTRITION", "Nutrition value "+v.name+" cannot be negative")
		}
	}
	return nil
}

// OctagonCode identifies a front-of-pack warning
type OctagonCode string

const (
	OctagonHighSodium       OctagonCode = "HIGH_SODIUM"
	OctagonHighSugar        OctagonCode = "HIGH_SUGAR"
	OctagonHighSaturatedFat OctagonCode = "HIGH_SATURATED_FAT"
	OctagonContainsTransFat OctagonCode = "CONTAINS_TRANS_FAT"
)

// OctagonLegend is printed under the badges
const OctagonLegend = "EVITAR SU CONSUMO EXCESIVO"

// OctagonWarning is a badge shown on the product label and scan result
type OctagonWarning struct {
	Code  OctagonCode `json:"code"`
	Label string      `json:"label"`
}

var octagonLabels = map[OctagonCode]string{
	OctagonHighSodium:       "ALTO EN SODIO",
	OctagonHighSugar:        "ALTO EN AZÚCAR",
	OctagonHighSaturatedFat: "ALTO EN GRASAS SATURADAS",
	OctagonContainsTransFat: "CONTIENE GRASAS TRANS",
}

// Label returns the badge text for the code
func (c OctagonCode) Label() string {
	return octagonLabels[c]
}

// OctagonThresholds are the per-100 g/ml limits at or above which a warning applies
type OctagonThresholds struct {
	SodiumMg      decimal.Decimal
	SugarG        decimal.Decimal
	SaturatedFatG decimal.Decimal
}

// Fixed thresholds for solid and liquid foods.
var (
	SolidThresholds = OctagonThresholds{
		SodiumMg:      decimal.NewFromInt(400),
		SugarG:        decimal.NewFromInt(10),
		SaturatedFatG: decimal.NewFromInt(4),
	}
	LiquidThresholds = OctagonThresholds{
		SodiumMg:      decimal.NewFromInt(100),
		SugarG:        decimal.NewFromInt(5),
		SaturatedFatG: decimal.NewFromInt(3),
	}
)

// ThresholdsFor returns the thresholds that apply to the form
func ThresholdsFor(form NutritionForm) OctagonThresholds {
	if form == NutritionFormLiquid {
		return LiquidThresholds
	}
	return SolidThresholds
}

// Octagons computes the warnings for the nutrition facts, in label order
func (n NutritionFacts) Octagons() []OctagonWarning {
	t := ThresholdsFor(n.Form)
	warnings := make([]OctagonWarning, 0, 4)

	add := func(code OctagonCode) {
		warnings = append(warnings, OctagonWarning{Code: code, Label: code.Label()})
	}

	if n.SodiumMg.GreaterThanOrEqual(t.SodiumMg) {
		add(OctagonHighSodium)
	}
	if n.SugarG.GreaterThanOrEqual(t.SugarG) {
		add(OctagonHighSugar)
	}
	if n.SaturatedFatG.GreaterThanOrEqual(t.SaturatedFatG) {
		add(OctagonHighSaturatedFat)
	}
	if n.TransFatG.IsPositive() {
		add(OctagonContainsTransFat)
	}
	return warnings
}

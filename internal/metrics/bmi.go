package metrics

import (
	"github.com/snapcal/backend/internal/types"
	"github.com/snapcal/backend/internal/units"
)

// BMI category names and their display color tokens. The tokens are part of
// the observable contract; the client colors its badge from them.
const (
	CategoryUnderweight = "Underweight"
	CategoryNormal      = "Normal weight"
	CategoryOverweight  = "Overweight"
	CategoryObese       = "Obese"
)

// CategoryInfo represents a BMI category with its color token.
type CategoryInfo struct {
	Category string `json:"category"`
	Color    string `json:"color"`
}

// CalculateBMI computes body mass index (kg/m²). Only height and weight are
// required; unavailable when either is missing or height is zero.
func CalculateBMI(profile types.UserProfile) (float64, bool) {
	info := profile.PersonalInfo
	if info.Height == nil || info.Weight == nil {
		return 0, false
	}

	heightM := units.HeightToCm(info.Height.Value, info.Height.Unit) / 100
	weightKg := units.WeightToKg(info.Weight.Value, info.Weight.Unit)
	if heightM <= 0 {
		return 0, false
	}

	return weightKg / (heightM * heightM), true
}

// BMICategory maps a BMI value to its category name. Bands are exclusive on
// the upper bound: 18.5 is already Normal weight, 25 Overweight, 30 Obese.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return CategoryUnderweight
	case bmi < 25.0:
		return CategoryNormal
	case bmi < 30.0:
		return CategoryOverweight
	default:
		return CategoryObese
	}
}

// BMICategoryWithColor maps a BMI value to its category and color token.
func BMICategoryWithColor(bmi float64) CategoryInfo {
	switch {
	case bmi < 18.5:
		return CategoryInfo{Category: CategoryUnderweight, Color: "blue"}
	case bmi < 25.0:
		return CategoryInfo{Category: CategoryNormal, Color: "green"}
	case bmi < 30.0:
		return CategoryInfo{Category: CategoryOverweight, Color: "yellow"}
	default:
		return CategoryInfo{Category: CategoryObese, Color: "red"}
	}
}

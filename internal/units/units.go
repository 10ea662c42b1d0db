// Package units converts height and weight between metric and imperial.
// All downstream calculations run on metric values.
package units

const (
	cmPerFoot = 30.48
	cmPerInch = 2.54
	lbsPerKg  = 2.20462
)

// Unit tags used by measurements.
const (
	UnitCm  = "cm"
	UnitFt  = "ft"
	UnitKg  = "kg"
	UnitLbs = "lbs"
)

func CmToFeet(cm float64) float64 {
	return cm / cmPerFoot
}

func FeetToCm(feet float64) float64 {
	return feet * cmPerFoot
}

func CmToInches(cm float64) float64 {
	return cm / cmPerInch
}

func InchesToCm(inches float64) float64 {
	return inches * cmPerInch
}

func KgToLbs(kg float64) float64 {
	return kg * lbsPerKg
}

func LbsToKg(lbs float64) float64 {
	return lbs / lbsPerKg
}

// HeightToCm normalizes a height measurement to centimeters. Values without
// an imperial tag are already metric.
func HeightToCm(value float64, unit string) float64 {
	if unit == UnitFt {
		return FeetToCm(value)
	}
	return value
}

// WeightToKg normalizes a weight measurement to kilograms.
func WeightToKg(value float64, unit string) float64 {
	if unit == UnitLbs {
		return LbsToKg(value)
	}
	return value
}

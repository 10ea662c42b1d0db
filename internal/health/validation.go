// Package health validates physiological inputs against accepted ranges.
// Checks report results, they never fail: an absent field is simply skipped.
package health

import (
	"github.com/snapcal/backend/internal/types"
	"github.com/snapcal/backend/internal/units"
)

// Accepted input ranges.
const (
	MinAge = 13
	MaxAge = 120

	MinHeightCm = 100
	MaxHeightCm = 250
	MinHeightFt = 3
	MaxHeightFt = 8

	MinWeightKg  = 30
	MaxWeightKg  = 300
	MinWeightLbs = 66
	MaxWeightLbs = 660
)

// Result represents the outcome of a single range check.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// MetricsResult represents the aggregate outcome over a profile. Errors are
// ordered age, height, weight so callers can rely on the sequence.
type MetricsResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func ok() Result {
	return Result{Valid: true}
}

func invalid(message string) Result {
	return Result{Valid: false, Message: message}
}

// ValidateAge checks an age in whole years.
func ValidateAge(age int) Result {
	if age < MinAge || age > MaxAge {
		return invalid("Age must be between 13 and 120 years")
	}
	return ok()
}

// ValidateHeight checks a height against the range for its unit.
func ValidateHeight(value float64, unit string) Result {
	if unit == units.UnitFt {
		if value < MinHeightFt || value > MaxHeightFt {
			return invalid("Height must be between 3 and 8 feet")
		}
		return ok()
	}
	if value < MinHeightCm || value > MaxHeightCm {
		return invalid("Height must be between 100 and 250 cm")
	}
	return ok()
}

// ValidateWeight checks a weight against the range for its unit.
func ValidateWeight(value float64, unit string) Result {
	if unit == units.UnitLbs {
		if value < MinWeightLbs || value > MaxWeightLbs {
			return invalid("Weight must be between 66 and 660 lbs")
		}
		return ok()
	}
	if value < MinWeightKg || value > MaxWeightKg {
		return invalid("Weight must be between 30 and 300 kg")
	}
	return ok()
}

// ValidateMetrics checks every present physiological field on the profile.
// Absent fields are not failures; metrics derived from them simply come back
// unavailable.
func ValidateMetrics(profile types.UserProfile) MetricsResult {
	info := profile.PersonalInfo
	var errs []string

	if info.Age != nil {
		if r := ValidateAge(*info.Age); !r.Valid {
			errs = append(errs, r.Message)
		}
	}
	if info.Height != nil {
		if r := ValidateHeight(info.Height.Value, info.Height.Unit); !r.Valid {
			errs = append(errs, r.Message)
		}
	}
	if info.Weight != nil {
		if r := ValidateWeight(info.Weight.Value, info.Weight.Unit); !r.Valid {
			errs = append(errs, r.Message)
		}
	}

	return MetricsResult{Valid: len(errs) == 0, Errors: errs}
}

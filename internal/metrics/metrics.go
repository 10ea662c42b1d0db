// Package metrics derives physiological metrics (BMR, TDEE, calorie goal,
// BMI) from a user profile. Every calculator degrades to "unavailable" when
// its inputs are missing; partial profiles are expected, never an error.
package metrics

import (
	"math"

	"github.com/snapcal/backend/internal/types"
	"github.com/snapcal/backend/internal/units"
)

// ActivityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels.
var ActivityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// GoalAdjustments maps primary fitness goals to their daily calorie delta
// applied on top of TDEE.
var GoalAdjustments = map[string]float64{
	"weight_loss":     -500,
	"weight_gain":     500,
	"maintenance":     0,
	"muscle_building": 300,
}

// HealthMetrics represents the aggregate derivation over a profile. Each
// field is nil when its prerequisites are missing; the rest still compute.
type HealthMetrics struct {
	BMR              *float64      `json:"bmr,omitempty"`
	TDEE             *float64      `json:"tdee,omitempty"`
	CalorieGoal      *int          `json:"calorie_goal,omitempty"`
	BMI              *float64      `json:"bmi,omitempty"`
	BMICategory      string        `json:"bmi_category,omitempty"`
	BMICategoryColor *CategoryInfo `json:"bmi_category_color,omitempty"`
}

// CalculateBMR computes basal metabolic rate with the revised Harris-Benedict
// equations. The equation has exactly two variants, so any gender other than
// "male" or "female" is unavailable, as is any profile missing age, height,
// weight, or gender.
func CalculateBMR(profile types.UserProfile) (float64, bool) {
	info := profile.PersonalInfo
	if info.Age == nil || info.Height == nil || info.Weight == nil || info.Gender == "" {
		return 0, false
	}

	age := float64(*info.Age)
	heightCm := units.HeightToCm(info.Height.Value, info.Height.Unit)
	weightKg := units.WeightToKg(info.Weight.Value, info.Weight.Unit)

	switch info.Gender {
	case "male":
		return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*age, true
	case "female":
		return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*age, true
	default:
		return 0, false
	}
}

// CalculateTDEE computes total daily energy expenditure as BMR scaled by the
// activity multiplier. Unavailable when BMR is unavailable or the activity
// level is missing or unrecognized.
func CalculateTDEE(profile types.UserProfile) (float64, bool) {
	bmr, ok := CalculateBMR(profile)
	if !ok {
		return 0, false
	}
	mult, found := ActivityMultipliers[profile.Activity.Level]
	if !found {
		return 0, false
	}
	return bmr * mult, true
}

// CalculateCalorieGoal computes the daily calorie goal as TDEE adjusted for
// the primary fitness goal, rounded to the nearest calorie.
func CalculateCalorieGoal(profile types.UserProfile) (int, bool) {
	tdee, ok := CalculateTDEE(profile)
	if !ok {
		return 0, false
	}
	adjustment, found := GoalAdjustments[profile.Goals.Primary]
	if !found {
		return 0, false
	}
	return int(math.Round(tdee + adjustment)), true
}

// CalculateCustomCalorieGoal is the custom-adjustment variant: an arbitrary
// calorie delta replaces the named-goal adjustment.
func CalculateCustomCalorieGoal(profile types.UserProfile, delta int) (int, bool) {
	tdee, ok := CalculateTDEE(profile)
	if !ok {
		return 0, false
	}
	return int(math.Round(tdee + float64(delta))), true
}

// CalculateAll derives every metric the profile supports. Fields degrade
// independently: a profile with only height and weight still gets BMI.
func CalculateAll(profile types.UserProfile) HealthMetrics {
	var m HealthMetrics

	if bmr, ok := CalculateBMR(profile); ok {
		m.BMR = &bmr
	}
	if tdee, ok := CalculateTDEE(profile); ok {
		m.TDEE = &tdee
	}
	if goal, ok := CalculateCalorieGoal(profile); ok {
		m.CalorieGoal = &goal
	}
	if bmi, ok := CalculateBMI(profile); ok {
		rounded := math.Round(bmi*10) / 10
		m.BMI = &rounded
		m.BMICategory = BMICategory(bmi)
		info := BMICategoryWithColor(bmi)
		m.BMICategoryColor = &info
	}

	return m
}

// MissingDataFields lists the fields still needed for a full derivation, in
// the order they are checked: personal info, then activity, then goals.
func MissingDataFields(profile types.UserProfile) []string {
	var missing []string

	info := profile.PersonalInfo
	if info.Age == nil {
		missing = append(missing, "age")
	}
	if info.Height == nil {
		missing = append(missing, "height")
	}
	if info.Weight == nil {
		missing = append(missing, "weight")
	}
	if info.Gender == "" {
		missing = append(missing, "gender")
	}
	if profile.Activity.Level == "" {
		missing = append(missing, "activity level")
	}
	if profile.Goals.Primary == "" {
		missing = append(missing, "fitness goal")
	}

	return missing
}

// DefaultCalorieGoal returns the gender-based fallback goal used when a
// calculation is impossible. A UX fallback, not a computed estimate.
func DefaultCalorieGoal(gender string) int {
	switch gender {
	case "male":
		return 2500
	case "female":
		return 2000
	default:
		return 2000
	}
}

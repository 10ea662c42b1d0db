package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapcal/backend/internal/types"
)

// makeProfile builds a fully-populated profile; tests blank out fields to
// exercise the degradation paths.
func makeProfile(age int, gender string, heightCm, weightKg float64, activity, goal string) types.UserProfile {
	return types.UserProfile{
		PersonalInfo: types.PersonalInfo{
			Age:    &age,
			Gender: gender,
			Height: &types.Measurement{Value: heightCm, Unit: "cm"},
			Weight: &types.Measurement{Value: weightKg, Unit: "kg"},
		},
		Activity: types.ActivityInfo{Level: activity},
		Goals:    types.GoalInfo{Primary: goal},
	}
}

func TestBMRMatchesHarrisBenedict(t *testing.T) {
	male := makeProfile(30, "male", 180, 80, "moderate", "maintenance")
	bmr, ok := CalculateBMR(male)
	require.True(t, ok)
	assert.InDelta(t, 88.362+13.397*80+4.799*180-5.677*30, bmr, 0.01)

	female := makeProfile(25, "female", 165, 55, "light", "weight_loss")
	bmr, ok = CalculateBMR(female)
	require.True(t, ok)
	assert.InDelta(t, 447.593+9.247*55+3.098*165-4.330*25, bmr, 0.01)
}

func TestBMRUnavailableForOtherGenders(t *testing.T) {
	for _, gender := range []string{"other", "nonbinary", "prefer_not_to_say"} {
		p := makeProfile(30, gender, 180, 80, "moderate", "maintenance")
		_, ok := CalculateBMR(p)
		assert.False(t, ok, "gender %q must not compute BMR", gender)
	}
}

func TestBMRUnavailableWhenFieldsMissing(t *testing.T) {
	cases := []struct {
		name  string
		mutFn func(p *types.UserProfile)
	}{
		{"missing age", func(p *types.UserProfile) { p.PersonalInfo.Age = nil }},
		{"missing gender", func(p *types.UserProfile) { p.PersonalInfo.Gender = "" }},
		{"missing height", func(p *types.UserProfile) { p.PersonalInfo.Height = nil }},
		{"missing weight", func(p *types.UserProfile) { p.PersonalInfo.Weight = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := makeProfile(30, "male", 180, 80, "moderate", "maintenance")
			tc.mutFn(&p)
			_, ok := CalculateBMR(p)
			assert.False(t, ok)
		})
	}
}

func TestBMRConvertsImperialUnits(t *testing.T) {
	metric := makeProfile(30, "male", 182.88, 80, "moderate", "maintenance")
	imperial := metric
	imperial.PersonalInfo.Height = &types.Measurement{Value: 6, Unit: "ft"}
	imperial.PersonalInfo.Weight = &types.Measurement{Value: 80 * 2.20462, Unit: "lbs"}

	want, ok := CalculateBMR(metric)
	require.True(t, ok)
	got, ok := CalculateBMR(imperial)
	require.True(t, ok)
	assert.InDelta(t, want, got, 0.01)
}

func TestTDEEUsesDocumentedMultipliers(t *testing.T) {
	levels := map[string]float64{
		"sedentary":   1.2,
		"light":       1.375,
		"moderate":    1.55,
		"active":      1.725,
		"very_active": 1.9,
	}

	for level, mult := range levels {
		p := makeProfile(30, "male", 180, 80, level, "maintenance")
		bmr, ok := CalculateBMR(p)
		require.True(t, ok)
		tdee, ok := CalculateTDEE(p)
		require.True(t, ok, "level %q", level)
		assert.InDelta(t, bmr*mult, tdee, 1e-9)
	}
}

func TestTDEEUnavailableForUnknownLevel(t *testing.T) {
	p := makeProfile(30, "male", 180, 80, "couch_potato", "maintenance")
	_, ok := CalculateTDEE(p)
	assert.False(t, ok)

	p.Activity.Level = ""
	_, ok = CalculateTDEE(p)
	assert.False(t, ok)
}

func TestCalorieGoalAppliesDocumentedAdjustments(t *testing.T) {
	adjustments := map[string]float64{
		"weight_loss":     -500,
		"weight_gain":     500,
		"maintenance":     0,
		"muscle_building": 300,
	}

	for goal, delta := range adjustments {
		p := makeProfile(30, "male", 180, 80, "moderate", goal)
		tdee, ok := CalculateTDEE(p)
		require.True(t, ok)
		got, ok := CalculateCalorieGoal(p)
		require.True(t, ok, "goal %q", goal)
		assert.Equal(t, int(math.Round(tdee+delta)), got)
	}
}

func TestCalorieGoalUnavailableForUnknownGoal(t *testing.T) {
	p := makeProfile(30, "male", 180, 80, "moderate", "get_swole")
	_, ok := CalculateCalorieGoal(p)
	assert.False(t, ok)

	p.Goals.Primary = ""
	_, ok = CalculateCalorieGoal(p)
	assert.False(t, ok)
}

func TestCustomCalorieGoal(t *testing.T) {
	p := makeProfile(30, "male", 180, 80, "moderate", "")
	tdee, ok := CalculateTDEE(p)
	require.True(t, ok)

	got, ok := CalculateCustomCalorieGoal(p, -250)
	require.True(t, ok)
	assert.Equal(t, int(math.Round(tdee-250)), got)

	got, ok = CalculateCustomCalorieGoal(p, 450)
	require.True(t, ok)
	assert.Equal(t, int(math.Round(tdee+450)), got)
}

func TestCompleteProfileScenario(t *testing.T) {
	p := makeProfile(30, "male", 180, 80, "moderate", "maintenance")

	bmr, ok := CalculateBMR(p)
	require.True(t, ok)
	assert.InDelta(t, 1853.63, bmr, 0.01)

	tdee, ok := CalculateTDEE(p)
	require.True(t, ok)
	assert.InDelta(t, 2873.13, tdee, 0.01)

	goal, ok := CalculateCalorieGoal(p)
	require.True(t, ok)
	assert.Equal(t, 2873, goal)

	bmi, ok := CalculateBMI(p)
	require.True(t, ok)
	assert.InDelta(t, 24.69, bmi, 0.01)
	assert.Equal(t, CategoryNormal, BMICategory(bmi))
}

func TestBMICategoryBands(t *testing.T) {
	assert.Equal(t, CategoryUnderweight, BMICategory(17))
	assert.Equal(t, CategoryNormal, BMICategory(22))
	assert.Equal(t, CategoryOverweight, BMICategory(27))
	assert.Equal(t, CategoryObese, BMICategory(32))

	// band edges belong to the upper category
	assert.Equal(t, CategoryNormal, BMICategory(18.5))
	assert.Equal(t, CategoryOverweight, BMICategory(25))
	assert.Equal(t, CategoryObese, BMICategory(30))
}

func TestBMICategoryColors(t *testing.T) {
	assert.Equal(t, CategoryInfo{Category: CategoryUnderweight, Color: "blue"}, BMICategoryWithColor(17))
	assert.Equal(t, CategoryInfo{Category: CategoryNormal, Color: "green"}, BMICategoryWithColor(22))
	assert.Equal(t, CategoryInfo{Category: CategoryOverweight, Color: "yellow"}, BMICategoryWithColor(27))
	assert.Equal(t, CategoryInfo{Category: CategoryObese, Color: "red"}, BMICategoryWithColor(32))
}

func TestCalculateAllDegradesFieldByField(t *testing.T) {
	// only height and weight: BMI computes, everything else is nil
	p := types.UserProfile{
		PersonalInfo: types.PersonalInfo{
			Height: &types.Measurement{Value: 180, Unit: "cm"},
			Weight: &types.Measurement{Value: 80, Unit: "kg"},
		},
	}

	m := CalculateAll(p)
	assert.Nil(t, m.BMR)
	assert.Nil(t, m.TDEE)
	assert.Nil(t, m.CalorieGoal)
	require.NotNil(t, m.BMI)
	assert.InDelta(t, 24.7, *m.BMI, 1e-9)
	assert.Equal(t, CategoryNormal, m.BMICategory)
	require.NotNil(t, m.BMICategoryColor)
	assert.Equal(t, "green", m.BMICategoryColor.Color)

	// complete profile fills everything
	full := makeProfile(30, "male", 180, 80, "moderate", "maintenance")
	m = CalculateAll(full)
	assert.NotNil(t, m.BMR)
	assert.NotNil(t, m.TDEE)
	assert.NotNil(t, m.CalorieGoal)
	assert.NotNil(t, m.BMI)

	// empty profile yields nothing, not an error
	m = CalculateAll(types.UserProfile{})
	assert.Nil(t, m.BMR)
	assert.Nil(t, m.TDEE)
	assert.Nil(t, m.CalorieGoal)
	assert.Nil(t, m.BMI)
	assert.Empty(t, m.BMICategory)
}

func TestMissingDataFieldsOrder(t *testing.T) {
	got := MissingDataFields(types.UserProfile{})
	assert.Equal(t, []string{"age", "height", "weight", "gender", "activity level", "fitness goal"}, got)

	p := makeProfile(30, "male", 180, 80, "moderate", "maintenance")
	assert.Empty(t, MissingDataFields(p))

	p.PersonalInfo.Gender = ""
	p.Goals.Primary = ""
	assert.Equal(t, []string{"gender", "fitness goal"}, MissingDataFields(p))
}

func TestDefaultCalorieGoal(t *testing.T) {
	assert.Equal(t, 2500, DefaultCalorieGoal("male"))
	assert.Equal(t, 2000, DefaultCalorieGoal("female"))
	assert.Equal(t, 2000, DefaultCalorieGoal("other"))
	assert.Equal(t, 2000, DefaultCalorieGoal(""))
}

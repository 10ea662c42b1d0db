package types

import "time"

// Macros represents the macronutrient breakdown of a food item.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Fiber   float64 `json:"fiber,omitempty"`
}

// FoodItem represents a single recognized food within an analysis.
// Items are immutable once produced; a correction replaces the item wholesale.
type FoodItem struct {
	Name          string   `json:"name"`
	Calories      float64  `json:"calories"`
	Quantity      string   `json:"quantity,omitempty"`
	Confidence    float64  `json:"confidence"`
	Ingredients   []string `json:"ingredients,omitempty"`
	CookingMethod string   `json:"cooking_method,omitempty"`
	Macros        *Macros  `json:"macros,omitempty"`
	Category      string   `json:"category,omitempty"`
	HealthScore   *int     `json:"health_score,omitempty"`
}

// FoodAnalysisResult represents the outcome of one vision analysis call.
// It is transient: held in memory until committed as a FoodEntry or discarded.
type FoodAnalysisResult struct {
	Foods         []FoodItem `json:"foods"`
	TotalCalories float64    `json:"total_calories"`
	Confidence    float64    `json:"confidence"`
	Timestamp     time.Time  `json:"timestamp"`
	ImageURL      string     `json:"image_url,omitempty"`
}

// SumCalories returns the calorie total across a list of food items.
func SumCalories(foods []FoodItem) float64 {
	var total float64
	for _, f := range foods {
		total += f.Calories
	}
	return total
}

// ReplaceFood swaps the item at index i for the corrected one and re-derives
// TotalCalories from the full foods list. Out-of-range indexes are ignored.
func (r *FoodAnalysisResult) ReplaceFood(i int, corrected FoodItem) {
	if i < 0 || i >= len(r.Foods) {
		return
	}
	r.Foods[i] = corrected
	r.TotalCalories = SumCalories(r.Foods)
}

package types

import "time"

// FoodEntry represents a committed meal record. Entries are created by the
// storage service, which assigns the ID and derives Date from the timestamp's
// local day.
type FoodEntry struct {
	ID            string     `json:"id"`
	Timestamp     time.Time  `json:"timestamp"`
	Foods         []FoodItem `json:"foods"`
	TotalCalories float64    `json:"total_calories"`
	ImageData     string     `json:"image_data,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Date          string     `json:"date"`
}

// DailyData represents the derived read model for a single calendar day.
// Never persisted; GoalCalories is the goal at read time, not historical.
type DailyData struct {
	Date          string      `json:"date"`
	TotalCalories float64     `json:"total_calories"`
	GoalCalories  int         `json:"goal_calories"`
	Entries       []FoodEntry `json:"entries"`
	GoalMet       bool        `json:"goal_met"`
}

// StorageInfo represents a best-effort usage estimate against the assumed
// storage capacity.
type StorageInfo struct {
	Used       int64   `json:"used"`
	Available  int64   `json:"available"`
	Percentage float64 `json:"percentage"`
}

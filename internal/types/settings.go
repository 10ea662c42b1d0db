package types

// UserSettings represents the per-installation settings singleton.
type UserSettings struct {
	DailyCalorieGoal  int    `json:"daily_calorie_goal"`
	APIKey            string `json:"api_key,omitempty"`
	Notifications     bool   `json:"notifications"`
	DataRetentionDays int    `json:"data_retention_days"`
}

// UserSettingsPatch represents a partial settings update; only non-nil fields
// are applied.
type UserSettingsPatch struct {
	DailyCalorieGoal  *int    `json:"daily_calorie_goal,omitempty"`
	APIKey            *string `json:"api_key,omitempty"`
	Notifications     *bool   `json:"notifications,omitempty"`
	DataRetentionDays *int    `json:"data_retention_days,omitempty"`
}

// DefaultUserSettings returns the settings used when nothing has been stored
// yet, and the per-field fallback when a stored blob is missing or corrupt.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		DailyCalorieGoal:  2000,
		Notifications:     true,
		DataRetentionDays: 30,
	}
}

package types

import "time"

// StoredProfileVersion is the envelope version written with every profile.
const StoredProfileVersion = "1.0"

// Measurement represents a value with an explicit unit tag ("cm"/"ft" for
// height, "kg"/"lbs" for weight).
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// PersonalInfo represents the physiological portion of a profile. Every field
// is individually optional; derived metrics degrade when fields are absent.
type PersonalInfo struct {
	Age    *int         `json:"age,omitempty"`
	Gender string       `json:"gender,omitempty"`
	Height *Measurement `json:"height,omitempty"`
	Weight *Measurement `json:"weight,omitempty"`
}

// ActivityInfo represents activity level and exercise habits.
type ActivityInfo struct {
	Level             string `json:"level,omitempty"`
	ExerciseFrequency *int   `json:"exercise_frequency,omitempty"`
}

// GoalInfo represents the user's fitness goals.
type GoalInfo struct {
	Primary          string   `json:"primary,omitempty"`
	TargetCalories   *int     `json:"target_calories,omitempty"`
	HealthObjectives []string `json:"health_objectives,omitempty"`
}

// PreferenceInfo represents display and notification preferences.
type PreferenceInfo struct {
	Units         string `json:"units,omitempty"`
	Notifications bool   `json:"notifications"`
}

// ProfileMetadata represents bookkeeping written alongside the profile.
type ProfileMetadata struct {
	CreatedAt         time.Time `json:"created_at"`
	LastUpdated       time.Time `json:"last_updated"`
	OnboardingVersion string    `json:"onboarding_version,omitempty"`
}

// UserProfile represents the onboarding profile singleton.
type UserProfile struct {
	HasCompletedOnboarding bool            `json:"has_completed_onboarding"`
	PersonalInfo           PersonalInfo    `json:"personal_info"`
	Activity               ActivityInfo    `json:"activity"`
	Goals                  GoalInfo        `json:"goals"`
	Preferences            PreferenceInfo  `json:"preferences"`
	Metadata               ProfileMetadata `json:"metadata"`
}

// StoredProfile represents the versioned envelope the profile is persisted in.
// Checksum, when present, is the hex SHA-256 of the profile's JSON encoding.
type StoredProfile struct {
	Version  string      `json:"version"`
	Profile  UserProfile `json:"profile"`
	Checksum string      `json:"checksum,omitempty"`
}

package api

import (
	"time"

	"github.com/snapcal/backend/internal/metrics"
	"github.com/snapcal/backend/internal/service"
	"github.com/snapcal/backend/internal/types"
)

// PairRequest carries the shared key a device presents to pair.
type PairRequest struct {
	PairingKey string `json:"pairing_key" binding:"required"`
}

// PairResponse returns the issued device token.
type PairResponse struct {
	Token string `json:"token"`
}

// UpdateGoalRequest sets the daily calorie goal.
type UpdateGoalRequest struct {
	Goal int `json:"goal" binding:"required"`
}

// UpdateAPIKeyRequest stores the user's own analysis credential.
type UpdateAPIKeyRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// SaveEntryRequest is a food entry draft as submitted by the client. The id,
// date, and calorie total are derived server-side.
type SaveEntryRequest struct {
	Timestamp time.Time        `json:"timestamp"`
	Foods     []types.FoodItem `json:"foods" binding:"required"`
	ImageData string           `json:"image_data"`
	ImageURL  string           `json:"image_url"`
}

// AnalyzeRequest carries the photo to analyze as a base64 data URL.
type AnalyzeRequest struct {
	Image string `json:"image" binding:"required"`
}

// CorrectRequest reworks one item of a prior analysis with a free-text
// correction.
type CorrectRequest struct {
	Result     types.FoodAnalysisResult `json:"result"`
	Index      int                      `json:"index"`
	Correction string                   `json:"correction" binding:"required"`
}

// StorageResponse combines the usage estimate with cleanup advice.
type StorageResponse struct {
	Info            types.StorageInfo                   `json:"info"`
	Recommendations service.OptimizationRecommendations `json:"recommendations"`
	UnderPressure   bool                                `json:"under_pressure"`
}

// MetricsResponse reports the derived health metrics plus what is missing to
// compute the rest. The fallback goal is present only when the profile cannot
// support a computed one.
type MetricsResponse struct {
	Metrics             metrics.HealthMetrics `json:"metrics"`
	MissingFields       []string              `json:"missing_fields"`
	FallbackCalorieGoal *int                  `json:"fallback_calorie_goal,omitempty"`
}

package service

import (
	"context"

	"github.com/snapcal/backend/internal/types"
)

// IStorageService defines the interface for persistence operations
type IStorageService interface {
	GetUserSettings(ctx context.Context) types.UserSettings
	UpdateUserSettings(ctx context.Context, patch types.UserSettingsPatch) (types.UserSettings, error)
	UpdateDailyGoal(ctx context.Context, goal int) (types.UserSettings, error)
	SetUserAPIKey(ctx context.Context, key string) (types.UserSettings, error)
	SaveFoodEntry(ctx context.Context, draft types.FoodEntry) (*types.FoodEntry, error)
	GetAllEntries(ctx context.Context) []types.FoodEntry
	GetDailyEntries(ctx context.Context, date string) []types.FoodEntry
	GetTodaysEntries(ctx context.Context) []types.FoodEntry
	GetWeeklyData(ctx context.Context) []types.DailyData
	DeleteEntry(ctx context.Context, id string) (bool, error)
	ClearAllData(ctx context.Context) error
	GetUserProfile(ctx context.Context) *types.UserProfile
	MarkOnboardingComplete(ctx context.Context, profile types.UserProfile) error
	HasCompletedOnboarding(ctx context.Context) bool
	CalculateDailyCalories(profile types.UserProfile) (int, bool)
	GetStorageInfo(ctx context.Context) types.StorageInfo
}

// IStorageOptimizer defines the interface for quota-pressure operations
type IStorageOptimizer interface {
	CanStoreEntry(ctx context.Context, entry types.FoodEntry) (bool, string)
	GetRecommendations(ctx context.Context) OptimizationRecommendations
	PerformCleanup(ctx context.Context) CleanupResult
	OptimizeFoodEntry(entry types.FoodEntry) types.FoodEntry
	UnderPressure(ctx context.Context) bool
}

// IImageService defines the interface for image transcoding operations
type IImageService interface {
	CompressImage(dataURL string, maxBytes int) (string, error)
}

// IAnalysisService defines the interface for food recognition operations
type IAnalysisService interface {
	AnalyzeImage(ctx context.Context, imageDataURL string, opts AnalyzeOptions) (*types.FoodAnalysisResult, error)
	CorrectFoodItem(ctx context.Context, result *types.FoodAnalysisResult, index int, correction string, opts AnalyzeOptions) (*types.FoodAnalysisResult, error)
}

// IAuthService defines the interface for device pairing operations
type IAuthService interface {
	Pair(pairingKey string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IArchiveService defines the interface for off-device photo archival
type IArchiveService interface {
	Enabled() bool
	ArchiveImage(ctx context.Context, imageDataURL string) (string, error)
}

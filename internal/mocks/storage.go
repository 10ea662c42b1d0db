package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/snapcal/backend/internal/service"
	"github.com/snapcal/backend/internal/types"
)

// MockStorageService is a mock implementation of the IStorageService interface
type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) GetUserSettings(ctx context.Context) types.UserSettings {
	args := m.Called(ctx)
	return args.Get(0).(types.UserSettings)
}

func (m *MockStorageService) UpdateUserSettings(ctx context.Context, patch types.UserSettingsPatch) (types.UserSettings, error) {
	args := m.Called(ctx, patch)
	return args.Get(0).(types.UserSettings), args.Error(1)
}

func (m *MockStorageService) UpdateDailyGoal(ctx context.Context, goal int) (types.UserSettings, error) {
	args := m.Called(ctx, goal)
	return args.Get(0).(types.UserSettings), args.Error(1)
}

func (m *MockStorageService) SetUserAPIKey(ctx context.Context, key string) (types.UserSettings, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(types.UserSettings), args.Error(1)
}

func (m *MockStorageService) SaveFoodEntry(ctx context.Context, draft types.FoodEntry) (*types.FoodEntry, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FoodEntry), args.Error(1)
}

func (m *MockStorageService) GetAllEntries(ctx context.Context) []types.FoodEntry {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]types.FoodEntry)
}

func (m *MockStorageService) GetDailyEntries(ctx context.Context, date string) []types.FoodEntry {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]types.FoodEntry)
}

func (m *MockStorageService) GetTodaysEntries(ctx context.Context) []types.FoodEntry {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]types.FoodEntry)
}

func (m *MockStorageService) GetWeeklyData(ctx context.Context) []types.DailyData {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]types.DailyData)
}

func (m *MockStorageService) DeleteEntry(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorageService) ClearAllData(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorageService) GetUserProfile(ctx context.Context) *types.UserProfile {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*types.UserProfile)
}

func (m *MockStorageService) MarkOnboardingComplete(ctx context.Context, profile types.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockStorageService) HasCompletedOnboarding(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockStorageService) CalculateDailyCalories(profile types.UserProfile) (int, bool) {
	args := m.Called(profile)
	return args.Int(0), args.Bool(1)
}

func (m *MockStorageService) GetStorageInfo(ctx context.Context) types.StorageInfo {
	args := m.Called(ctx)
	return args.Get(0).(types.StorageInfo)
}

// MockStorageOptimizer is a mock implementation of the IStorageOptimizer interface
type MockStorageOptimizer struct {
	mock.Mock
}

func (m *MockStorageOptimizer) CanStoreEntry(ctx context.Context, entry types.FoodEntry) (bool, string) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.String(1)
}

func (m *MockStorageOptimizer) GetRecommendations(ctx context.Context) service.OptimizationRecommendations {
	args := m.Called(ctx)
	return args.Get(0).(service.OptimizationRecommendations)
}

func (m *MockStorageOptimizer) PerformCleanup(ctx context.Context) service.CleanupResult {
	args := m.Called(ctx)
	return args.Get(0).(service.CleanupResult)
}

func (m *MockStorageOptimizer) OptimizeFoodEntry(entry types.FoodEntry) types.FoodEntry {
	args := m.Called(entry)
	return args.Get(0).(types.FoodEntry)
}

func (m *MockStorageOptimizer) UnderPressure(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// MockImageService is a mock implementation of the IImageService interface
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) CompressImage(dataURL string, maxBytes int) (string, error) {
	args := m.Called(dataURL, maxBytes)
	return args.String(0), args.Error(1)
}

var (
	_ service.IStorageService   = (*MockStorageService)(nil)
	_ service.IStorageOptimizer = (*MockStorageOptimizer)(nil)
	_ service.IImageService     = (*MockImageService)(nil)
)

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/snapcal/backend/internal/service"
	"github.com/snapcal/backend/internal/types"
)

// MockAnalysisService is a mock implementation of the IAnalysisService interface
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) AnalyzeImage(ctx context.Context, imageDataURL string, opts service.AnalyzeOptions) (*types.FoodAnalysisResult, error) {
	args := m.Called(ctx, imageDataURL, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FoodAnalysisResult), args.Error(1)
}

func (m *MockAnalysisService) CorrectFoodItem(ctx context.Context, result *types.FoodAnalysisResult, index int, correction string, opts service.AnalyzeOptions) (*types.FoodAnalysisResult, error) {
	args := m.Called(ctx, result, index, correction, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FoodAnalysisResult), args.Error(1)
}

// MockArchiveService is a mock implementation of the IArchiveService interface
type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockArchiveService) ArchiveImage(ctx context.Context, imageDataURL string) (string, error) {
	args := m.Called(ctx, imageDataURL)
	return args.String(0), args.Error(1)
}

var (
	_ service.IAnalysisService = (*MockAnalysisService)(nil)
	_ service.IArchiveService  = (*MockArchiveService)(nil)
)

package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/snapcal/backend/internal/service"
	"github.com/snapcal/backend/internal/types"
)

// MockAuthService is a mock implementation of the IAuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Pair(pairingKey string) (string, error) {
	args := m.Called(pairingKey)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

var _ service.IAuthService = (*MockAuthService)(nil)

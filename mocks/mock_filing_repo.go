package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dealscout/internal/domain"
)

// MockFilingRepo is a mock implementation of port.FilingRepository.
type MockFilingRepo struct {
	mock.Mock
}

func (m *MockFilingRepo) Create(ctx context.Context, filing *domain.Filing) error {
	args := m.Called(ctx, filing)
	return args.Error(0)
}

func (m *MockFilingRepo) GetByAccession(ctx context.Context, accessionNumber string) (*domain.Filing, error) {
	args := m.Called(ctx, accessionNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Filing), args.Error(1)
}

func (m *MockFilingRepo) List(ctx context.Context, offset, limit int) ([]domain.Filing, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Filing), args.Int(1), args.Error(2)
}

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"dealscout/internal/domain"
)

// MockFilingSource is a mock implementation of port.FilingSource.
type MockFilingSource struct {
	mock.Mock
}

func (m *MockFilingSource) SearchFilings(ctx context.Context, start, end time.Time) ([]domain.SearchHit, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchHit), args.Error(1)
}

func (m *MockFilingSource) ResolveIndex(ctx context.Context, cik, accessionNumber string) (*domain.FilingIndex, error) {
	args := m.Called(ctx, cik, accessionNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FilingIndex), args.Error(1)
}

func (m *MockFilingSource) FetchDocument(ctx context.Context, cik, accessionNumber, filename string) ([]byte, error) {
	args := m.Called(ctx, cik, accessionNumber, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"dealscout/internal/domain"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, start, end time.Time) (*domain.IngestSummary, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestSummary), args.Error(1)
}

package port

import (
	"context"

	"dealscout/internal/domain"
)

// FilingRepository defines the contract for filing persistence.
//
// Create must be conflict-safe on accession number: inserting a filing
// whose accession number already exists returns domain.ErrDuplicateFiling
// and leaves the stored row untouched.
type FilingRepository interface {
	Create(ctx context.Context, filing *domain.Filing) error
	GetByAccession(ctx context.Context, accessionNumber string) (*domain.Filing, error)
	List(ctx context.Context, offset, limit int) ([]domain.Filing, int, error)
}

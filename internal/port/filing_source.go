package port

import (
	"context"
	"time"

	"dealscout/internal/domain"
)

// FilingSource abstracts the upstream disclosure system: searching for
// filings, resolving a filing's document manifest, and fetching raw
// document bytes.
type FilingSource interface {
	// SearchFilings returns Form D hits filed within [start, end],
	// inclusive. No hits is an empty slice, not an error.
	SearchFilings(ctx context.Context, start, end time.Time) ([]domain.SearchHit, error)

	// ResolveIndex fetches the filing's document manifest and selects
	// the primary XML document. PrimaryDocument is empty when no
	// document matches the primary-document naming convention.
	ResolveIndex(ctx context.Context, cik, accessionNumber string) (*domain.FilingIndex, error)

	// FetchDocument returns the raw bytes of one document within a filing.
	FetchDocument(ctx context.Context, cik, accessionNumber, filename string) ([]byte, error)
}

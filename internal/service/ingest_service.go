package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dealscout/internal/config"
	"dealscout/internal/domain"
	"dealscout/internal/formd"
	"dealscout/internal/port"
)

// IngestService orchestrates one ingestion run: discover filings for a
// date range, fetch and parse each primary document, and persist the
// result exactly once per accession number.
type IngestService interface {
	Ingest(ctx context.Context, start, end time.Time) (*domain.IngestSummary, error)
}

type ingestService struct {
	source     port.FilingSource
	repo       port.FilingRepository
	archive    port.ObjectStorage
	archiveCfg *config.ArchiveConfig
}

// NewIngestService creates a new IngestService implementation. archive
// may be nil, in which case raw documents are not archived.
func NewIngestService(
	source port.FilingSource,
	repo port.FilingRepository,
	archive port.ObjectStorage,
	archiveCfg *config.ArchiveConfig,
) IngestService {
	return &ingestService{
		source:     source,
		repo:       repo,
		archive:    archive,
		archiveCfg: archiveCfg,
	}
}

// Ingest processes all Form D filings discovered in [start, end].
// Zero dates default to today. Filings are processed sequentially; the
// fetch client's pacing gate is a shared ordered resource, and one
// filing's failure never aborts the batch. Only an unreachable search
// endpoint fails the run as a whole.
//
// The returned summary satisfies
// Ingested + Skipped + Errors == number of filings discovered.
func (s *ingestService) Ingest(ctx context.Context, start, end time.Time) (*domain.IngestSummary, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if start.IsZero() && end.IsZero() {
		start, end = today, today
	} else if start.IsZero() {
		start = end
	} else if end.IsZero() {
		end = start
	}
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	hits, err := s.source.SearchFilings(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("discovering filings: %w", err)
	}

	log.Printf("ingestService: discovered %d filings for %s..%s",
		len(hits), start.Format("2006-01-02"), end.Format("2006-01-02"))

	summary := &domain.IngestSummary{Details: make([]domain.IngestOutcome, 0, len(hits))}
	for _, hit := range hits {
		summary.Add(s.processFiling(ctx, hit))
	}

	log.Printf("ingestService: run complete (ingested=%d skipped=%d errors=%d)",
		summary.Ingested, summary.Skipped, summary.Errors)
	return summary, nil
}

// processFiling runs the per-filing state machine and always returns a
// terminal outcome. Panics are caught here so a single malformed filing
// cannot take down the batch.
func (s *ingestService) processFiling(ctx context.Context, hit domain.SearchHit) (outcome domain.IngestOutcome) {
	outcome = domain.IngestOutcome{AccessionNumber: hit.AccessionNumber}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ingestService: panic processing %s: %v", hit.AccessionNumber, r)
			outcome.Status = domain.IngestStatusError
			outcome.Error = fmt.Sprintf("unexpected failure: %v", r)
		}
	}()

	index, err := s.source.ResolveIndex(ctx, hit.CIK, hit.AccessionNumber)
	if err != nil {
		outcome.Status = domain.IngestStatusError
		outcome.Error = err.Error()
		return outcome
	}
	if index.PrimaryDocument == "" {
		outcome.Status = domain.IngestStatusError
		outcome.Error = "no primary document"
		return outcome
	}

	xmlBytes, err := s.source.FetchDocument(ctx, hit.CIK, hit.AccessionNumber, index.PrimaryDocument)
	if err != nil {
		outcome.Status = domain.IngestStatusError
		outcome.Error = err.Error()
		return outcome
	}

	s.archiveDocument(ctx, hit.AccessionNumber, index.PrimaryDocument, xmlBytes)

	filing := formd.Parse(xmlBytes, hit.AccessionNumber, hit.CIK)
	if !formd.Validate(filing) {
		outcome.Status = domain.IngestStatusError
		outcome.Error = "parse failed"
		return outcome
	}

	if err := s.repo.Create(ctx, filing); err != nil {
		if errors.Is(err, domain.ErrDuplicateFiling) {
			outcome.Status = domain.IngestStatusSkipped
			return outcome
		}
		outcome.Status = domain.IngestStatusError
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Status = domain.IngestStatusIngested
	return outcome
}

// archiveDocument stores the raw XML for audit and replay. Archiving is
// best effort: a failure is logged and never changes the filing's
// outcome.
func (s *ingestService) archiveDocument(ctx context.Context, accessionNumber, filename string, body []byte) {
	if s.archive == nil || s.archiveCfg == nil || !s.archiveCfg.Enabled {
		return
	}
	key := fmt.Sprintf("%s/%s/%s", s.archiveCfg.KeyPrefix, accessionNumber, filename)
	_, err := s.archive.Upload(ctx, port.UploadInput{
		Bucket:      s.archiveCfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "application/xml",
	})
	if err != nil {
		log.Printf("ingestService: archiving %s failed: %v", accessionNumber, err)
	}
}

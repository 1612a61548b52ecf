package service

import (
	"context"
	"log"
	"time"
)

// IngestWorkerConfig holds settings for the background ingest worker.
type IngestWorkerConfig struct {
	PollInterval time.Duration
}

// IngestWorker periodically ingests the current day's filings so the
// stored data stays fresh without manual runs.
type IngestWorker struct {
	svc IngestService
	cfg IngestWorkerConfig
}

// NewIngestWorker creates a new IngestWorker.
func NewIngestWorker(svc IngestService, cfg IngestWorkerConfig) *IngestWorker {
	return &IngestWorker{svc: svc, cfg: cfg}
}

// Start runs the polling loop until ctx is canceled. An ingestion run
// fires immediately on start and then on every tick.
func (w *IngestWorker) Start(ctx context.Context) {
	log.Printf("ingestWorker: started (poll=%s)", w.cfg.PollInterval)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("ingestWorker: shutdown complete")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *IngestWorker) runOnce(ctx context.Context) {
	summary, err := w.svc.Ingest(ctx, time.Time{}, time.Time{})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("ingestWorker: run failed: %v", err)
		return
	}
	log.Printf("ingestWorker: ingested=%d skipped=%d errors=%d",
		summary.Ingested, summary.Skipped, summary.Errors)
}

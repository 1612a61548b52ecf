// Command ingest runs a one-shot ingestion for a date range, for
// backfills and manual runs outside the HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"dealscout/internal/config"
	"dealscout/internal/domain"
	"dealscout/internal/edgar"
	"dealscout/internal/port"
	"dealscout/internal/repository/postgres"
	"dealscout/internal/service"
	s3storage "dealscout/internal/storage/s3"
)

func main() {
	startFlag := flag.String("start", "", "start date (YYYY-MM-DD), defaults to today")
	endFlag := flag.String("end", "", "end date (YYYY-MM-DD), defaults to today")
	flag.Parse()

	if err := run(*startFlag, *endFlag); err != nil {
		log.Fatal(err)
	}
}

func run(startRaw, endRaw string) error {
	start, err := parseDate(startRaw)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	end, err := parseDate(endRaw)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	client, err := edgar.NewClient(&cfg.Edgar)
	if err != nil {
		return fmt.Errorf("failed to initialize edgar client: %w", err)
	}
	discovery := edgar.NewDiscovery(client, &cfg.Edgar)

	var archive port.ObjectStorage
	if cfg.Archive.Enabled {
		archive, err = s3storage.NewS3Client(&cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize archive storage: %w", err)
		}
	}

	svc := service.NewIngestService(discovery, postgres.NewFilingRepo(db), archive, &cfg.Archive)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := svc.Ingest(ctx, start, end)
	if err != nil {
		return err
	}

	log.Printf("done: ingested=%d skipped=%d errors=%d", summary.Ingested, summary.Skipped, summary.Errors)
	for _, d := range summary.Details {
		if d.Status == domain.IngestStatusError {
			log.Printf("  %s: %s", d.AccessionNumber, d.Error)
		}
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"dealscout/internal/config"
	"dealscout/internal/edgar"
	"dealscout/internal/handler"
	"dealscout/internal/port"
	"dealscout/internal/repository/postgres"
	"dealscout/internal/router"
	"dealscout/internal/service"
	s3storage "dealscout/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	filingRepo := postgres.NewFilingRepo(db)

	// Initialize the EDGAR client and discovery
	client, err := edgar.NewClient(&cfg.Edgar)
	if err != nil {
		return fmt.Errorf("failed to initialize edgar client: %w", err)
	}
	discovery := edgar.NewDiscovery(client, &cfg.Edgar)

	// Initialize the raw document archive when enabled
	var archive port.ObjectStorage
	if cfg.Archive.Enabled {
		archive, err = s3storage.NewS3Client(&cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize archive storage: %w", err)
		}
	}

	// Initialize services
	ingestSvc := service.NewIngestService(discovery, filingRepo, archive, &cfg.Archive)

	// Initialize handlers
	ingestH := handler.NewIngestHandler(ingestSvc)
	filingH := handler.NewFilingHandler(filingRepo)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, ingestH, filingH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Ingest.WorkerEnabled {
		worker := service.NewIngestWorker(ingestSvc, service.IngestWorkerConfig{
			PollInterval: cfg.Ingest.PollInterval,
		})
		go worker.Start(ctx)
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

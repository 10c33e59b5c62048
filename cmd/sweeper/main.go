package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"savelog/internal/blobstore"
	"savelog/internal/config"
	"savelog/internal/database"
	"savelog/internal/modules/logs"
	"savelog/internal/repository"
)

// One-shot maintenance pass: age out expired records, then drop metadata
// whose blob disappeared out-of-band. Run from cron; the server never sweeps
// on its own.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	blobs, err := blobstore.New(cfg.LogsDir)
	if err != nil {
		log.Fatalf("blob store init failed: %v", err)
	}

	service := logs.NewService(repository.NewLogRepository(db), blobs, cfg.BaseURL, nil)

	ctx := context.Background()
	swept, err := service.SweepExpired(ctx)
	if err != nil {
		log.Fatalf("sweep expired failed: %v", err)
	}

	reconciled, err := service.ReconcileMissingBlobs(ctx)
	if err != nil {
		log.Fatalf("reconcile failed: %v", err)
	}

	log.Printf("maintenance completed: expired=%d orphans=%d", swept, reconciled)
}

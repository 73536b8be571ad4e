package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"brokersum/adapters/hf"
	"brokersum/adapters/postgres"
	"brokersum/app"
	"brokersum/internal/config"
	"brokersum/internal/errors"
	"brokersum/internal/ingestion"
	"brokersum/internal/storage"
	"brokersum/ports"
	"brokersum/ui"
)

// initDatabase connects to PostgreSQL and applies the schema.
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := postgres.Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	files := postgres.NewFileRepository(db)
	activity := postgres.NewActivityRepository(db)
	blobs := storage.NewLocalStorage(cfg.Uploads.Dir)
	cache := app.NewDatasetCache(activity, cfg.Uploads.CacheTTL)
	loader := ingestion.NewLoader(files, activity, cfg.Uploads.ReloadWorkers)

	// The narrative endpoint stays dark without a token.
	var summarizer ports.Summarizer
	if cfg.HuggingFace.Token != "" {
		summarizer = hf.NewClient(hf.Config{
			BaseURL: cfg.HuggingFace.BaseURL,
			Token:   cfg.HuggingFace.Token,
			Model:   cfg.HuggingFace.Model,
			Timeout: cfg.HuggingFace.Timeout,
		})
		log.Printf("Summarization enabled with model %s", cfg.HuggingFace.Model)
	} else {
		log.Println("HF_TOKEN not set, narrative summaries disabled")
	}

	ingest := app.NewIngestService(files, activity, blobs, cache, loader, cfg.Uploads.MaxFileSize)
	summaries := app.NewSummaryService(cache, activity)
	narratives := app.NewNarrativeService(cache, summaries, summarizer)

	if cfg.Ops.Enabled {
		ops := ui.NewOpsServer(db)
		go func() {
			if err := ops.Start(":" + cfg.Ops.Port); err != nil {
				log.Printf("Ops sidecar stopped: %v", err)
			}
		}()
	}

	server := ui.NewServer(ingest, summaries, narratives, cfg.Uploads.MaxFileSize)
	if err := server.Start(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"brokersum/adapters/postgres"
	"brokersum/app"
	"brokersum/internal/config"
	"brokersum/internal/ingestion"
	"brokersum/internal/storage"
)

// loader bulk-ingests a directory of daily broker workbooks through the
// same pipeline the upload endpoint uses. Re-runs overwrite earlier
// loads of the same filenames.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: loader <workbook_dir>")
	}
	dir := os.Args[1]

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	files := postgres.NewFileRepository(db)
	activity := postgres.NewActivityRepository(db)
	blobs := storage.NewLocalStorage(cfg.Uploads.Dir)
	cache := app.NewDatasetCache(activity, cfg.Uploads.CacheTTL)
	reloader := ingestion.NewLoader(files, activity, cfg.Uploads.ReloadWorkers)
	ingest := app.NewIngestService(files, activity, blobs, cache, reloader, cfg.Uploads.MaxFileSize)

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".xlsx") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		log.Fatalf("No .xlsx workbooks in %s", dir)
	}
	log.Printf("Ingesting %d workbooks from %s", len(names), dir)

	stored, failed := 0, 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			log.Printf("SKIP %s: %v", name, err)
			failed++
			continue
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			log.Printf("SKIP %s: %v", name, err)
			failed++
			continue
		}

		report := ingest.IngestUpload(ctx, name, info.Size(), f)
		f.Close()

		if report.Status == app.ReportStored {
			note := ""
			if report.Overwritten {
				note = " (overwrote earlier load)"
			}
			log.Printf("OK   %s: %d rows for %s%s", name, report.Rows, report.TradeDate, note)
			stored++
		} else {
			log.Printf("FAIL %s: %s", name, report.Error)
			failed++
		}
	}

	log.Printf("Done: %d stored, %d failed", stored, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema holds the full DDL. The service owns its two tables, so the
// migration is a single idempotent statement batch rather than versioned
// files.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS broker_files (
		id UUID PRIMARY KEY,
		filename TEXT NOT NULL UNIQUE,
		trade_date DATE NOT NULL,
		file_path TEXT NOT NULL,
		content_hash TEXT NOT NULL DEFAULT '',
		file_size BIGINT NOT NULL DEFAULT 0,
		row_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_broker_files_trade_date ON broker_files (trade_date)`,
	`CREATE TABLE IF NOT EXISTS broker_activity (
		trade_date DATE NOT NULL,
		broker_code TEXT NOT NULL,
		broker_name TEXT NOT NULL,
		volume BIGINT NOT NULL DEFAULT 0,
		value BIGINT NOT NULL DEFAULT 0,
		frequency BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (trade_date, broker_code)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_broker_activity_code ON broker_activity (broker_code)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

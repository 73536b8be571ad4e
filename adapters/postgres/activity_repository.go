package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"brokersum/domain/broker"
	"brokersum/ports"
)

// insertBatchSize keeps multi-row inserts under the placeholder limit.
const insertBatchSize = 500

// activityRepository implements ports.ActivityRepository on Postgres.
type activityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *sqlx.DB) ports.ActivityRepository {
	return &activityRepository{db: db}
}

// ReplaceDay deletes the trade date's rows and inserts the new ones in a
// single transaction, so readers never observe a half-loaded day.
func (r *activityRepository) ReplaceDay(ctx context.Context, tradeDate time.Time, records []broker.ActivityRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM broker_activity WHERE trade_date = $1`, tradeDate); err != nil {
		return fmt.Errorf("failed to clear trade date: %w", err)
	}

	query := `INSERT INTO broker_activity (trade_date, broker_code, broker_name, volume, value, frequency)
		VALUES (:trade_date, :broker_code, :broker_name, :volume, :value, :frequency)`

	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if _, err := tx.NamedExecContext(ctx, query, records[start:end]); err != nil {
			return fmt.Errorf("failed to insert activity batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// DeleteDay removes every record for a trade date.
func (r *activityRepository) DeleteDay(ctx context.Context, tradeDate time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM broker_activity WHERE trade_date = $1`, tradeDate); err != nil {
		return fmt.Errorf("failed to delete trade date: %w", err)
	}
	return nil
}

const activityColumns = `trade_date, broker_code, broker_name, volume, value, frequency`

// ListAll returns every loaded record ordered by date and code.
func (r *activityRepository) ListAll(ctx context.Context) ([]broker.ActivityRecord, error) {
	var records []broker.ActivityRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT `+activityColumns+` FROM broker_activity ORDER BY trade_date, broker_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return records, nil
}

// ListRange returns records inside [from, to] inclusive.
func (r *activityRepository) ListRange(ctx context.Context, from, to time.Time) ([]broker.ActivityRecord, error) {
	var records []broker.ActivityRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT `+activityColumns+` FROM broker_activity
		WHERE trade_date >= $1 AND trade_date <= $2
		ORDER BY trade_date, broker_code`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity range: %w", err)
	}
	return records, nil
}

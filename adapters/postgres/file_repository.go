package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"brokersum/domain/core"
	"brokersum/internal/errors"
	"brokersum/ports"
)

// fileRepository implements ports.FileRepository on Postgres.
type fileRepository struct {
	db *sqlx.DB
}

// NewFileRepository creates a new workbook registry repository.
func NewFileRepository(db *sqlx.DB) ports.FileRepository {
	return &fileRepository{db: db}
}

const fileColumns = `id, filename, trade_date, file_path, content_hash, file_size, row_count, status, error_message, created_at, updated_at`

// Create inserts a registry row for a newly stored workbook.
func (r *fileRepository) Create(ctx context.Context, f *ports.StoredFile) error {
	query := `INSERT INTO broker_files (
		id, filename, trade_date, file_path, content_hash, file_size, row_count, status, error_message
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.Filename, f.TradeDate, f.FilePath, f.ContentHash, f.FileSize, f.RowCount,
		f.Status, f.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}
	return nil
}

// GetByID retrieves a registry row.
func (r *fileRepository) GetByID(ctx context.Context, id core.FileID) (*ports.StoredFile, error) {
	var f ports.StoredFile
	err := r.db.GetContext(ctx, &f, `SELECT `+fileColumns+` FROM broker_files WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("file")
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return &f, nil
}

// GetByFilename retrieves a registry row by its unique filename, or nil
// when the filename has not been uploaded before.
func (r *fileRepository) GetByFilename(ctx context.Context, filename string) (*ports.StoredFile, error) {
	var f ports.StoredFile
	err := r.db.GetContext(ctx, &f, `SELECT `+fileColumns+` FROM broker_files WHERE filename = $1`, filename)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get file by name: %w", err)
	}
	return &f, nil
}

// List returns the registry, newest trade dates first.
func (r *fileRepository) List(ctx context.Context) ([]*ports.StoredFile, error) {
	var files []*ports.StoredFile
	err := r.db.SelectContext(ctx, &files,
		`SELECT `+fileColumns+` FROM broker_files ORDER BY trade_date DESC, filename`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// UpdateStatus records the outcome of ingesting a stored workbook.
func (r *fileRepository) UpdateStatus(ctx context.Context, id core.FileID, status ports.FileStatus, rowCount int, errorMsg string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE broker_files SET status = $2, row_count = $3, error_message = $4, updated_at = NOW() WHERE id = $1`,
		id, status, rowCount, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to update file status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return errors.NotFound("file")
	}
	return nil
}

// Delete removes a registry row.
func (r *fileRepository) Delete(ctx context.Context, id core.FileID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM broker_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return errors.NotFound("file")
	}
	return nil
}

package ports

import (
	"context"
	"time"

	"brokersum/domain/broker"
	"brokersum/domain/core"
)

// FileStatus tracks an uploaded workbook through ingestion.
type FileStatus string

const (
	FileStatusPending FileStatus = "pending"
	FileStatusLoaded  FileStatus = "loaded"
	FileStatusFailed  FileStatus = "failed"
)

// StoredFile is the registry entry for one uploaded workbook.
type StoredFile struct {
	ID           core.FileID      `db:"id" json:"id"`
	Filename     string           `db:"filename" json:"filename"`
	TradeDate    time.Time        `db:"trade_date" json:"trade_date"`
	FilePath     string           `db:"file_path" json:"-"`
	ContentHash  core.ContentHash `db:"content_hash" json:"-"`
	FileSize     int64            `db:"file_size" json:"file_size"`
	RowCount     int              `db:"row_count" json:"row_count"`
	Status       FileStatus       `db:"status" json:"status"`
	ErrorMessage string           `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// FileRepository persists the uploaded-workbook registry.
type FileRepository interface {
	Create(ctx context.Context, f *StoredFile) error
	GetByID(ctx context.Context, id core.FileID) (*StoredFile, error)
	GetByFilename(ctx context.Context, filename string) (*StoredFile, error)
	List(ctx context.Context) ([]*StoredFile, error)
	UpdateStatus(ctx context.Context, id core.FileID, status FileStatus, rowCount int, errorMsg string) error
	Delete(ctx context.Context, id core.FileID) error
}

// ActivityRepository persists parsed broker activity rows.
type ActivityRepository interface {
	// ReplaceDay swaps out every record for the trade date in one
	// transaction. Re-uploads overwrite, never accumulate.
	ReplaceDay(ctx context.Context, tradeDate time.Time, records []broker.ActivityRecord) error
	DeleteDay(ctx context.Context, tradeDate time.Time) error
	ListAll(ctx context.Context) ([]broker.ActivityRecord, error)
	ListRange(ctx context.Context, from, to time.Time) ([]broker.ActivityRecord, error)
}

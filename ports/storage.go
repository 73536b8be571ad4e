package ports

import (
	"context"
	"io"
)

// BlobStorage keeps the raw uploaded workbooks so a full re-ingest can
// rebuild the activity table from source files.
type BlobStorage interface {
	// Store writes the stream and returns the stored path.
	Store(ctx context.Context, r io.Reader, filename string) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

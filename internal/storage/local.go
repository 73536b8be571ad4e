package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"brokersum/ports"
)

// chunkSize is the copy buffer for streaming uploads to disk.
const chunkSize = 1 << 20

// LocalStorage implements ports.BlobStorage on the local filesystem.
// Stored names carry a timestamp and uuid suffix so overwritten uploads
// never collide on disk.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a blob store rooted at baseDir.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

// Store writes the stream to a uniquely named file and returns its path.
func (s *LocalStorage) Store(ctx context.Context, r io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	ext := filepath.Ext(filename)
	base := filename[:len(filename)-len(ext)]
	unique := fmt.Sprintf("%s_%s_%s%s", base, time.Now().Format("20060102_150405"), uuid.New().String()[:8], ext)
	path := filepath.Join(s.baseDir, unique)

	dest, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dest.Close()

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(dest, r, buf); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}

	return path, nil
}

// Open returns a reader over a stored workbook.
func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored workbook. Missing files are not an error.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

var _ ports.BlobStorage = (*LocalStorage)(nil)

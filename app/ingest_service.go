package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"brokersum/adapters/excel"
	"brokersum/domain/core"
	"brokersum/internal"
	"brokersum/internal/errors"
	"brokersum/internal/ingestion"
	"brokersum/ports"
)

// Per-file upload outcomes. A batch upload reports one of these per file
// instead of failing the whole request.
const (
	ReportStored  = "stored"
	ReportSkipped = "skipped"
	ReportFailed  = "failed"
)

// FileReport is the outcome of ingesting one uploaded workbook.
type FileReport struct {
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	Overwritten bool   `json:"overwritten,omitempty"`
	Rows        int    `json:"rows,omitempty"`
	TradeDate   string `json:"trade_date,omitempty"`
	Error       string `json:"error,omitempty"`
}

// IngestService handles workbook uploads: validation, blob storage,
// parsing and the activity-table swap for the file's trade date.
type IngestService struct {
	files       ports.FileRepository
	activity    ports.ActivityRepository
	storage     ports.BlobStorage
	cache       *DatasetCache
	loader      *ingestion.Loader
	maxFileSize int64
	log         *internal.Logger
}

// NewIngestService wires the upload pipeline.
func NewIngestService(files ports.FileRepository, activity ports.ActivityRepository, storage ports.BlobStorage, cache *DatasetCache, loader *ingestion.Loader, maxFileSize int64) *IngestService {
	return &IngestService{
		files:       files,
		activity:    activity,
		storage:     storage,
		cache:       cache,
		loader:      loader,
		maxFileSize: maxFileSize,
		log:         internal.DefaultLogger.WithComponent("IngestService"),
	}
}

// IngestUpload runs one uploaded workbook through the pipeline. Files
// that are not valid daily exports (no date token in the name, missing
// sheet or headers, unchanged re-upload) are reported skipped and leave
// no trace in storage or the registry. A valid re-upload of a known
// filename overwrites that date's data. Failures are returned in the
// report, never as an error, so batch uploads keep going.
func (s *IngestService) IngestUpload(ctx context.Context, filename string, size int64, r io.Reader) FileReport {
	report := FileReport{Filename: filename, Status: ReportFailed}

	if err := s.validateUpload(filename, size); err != nil {
		report.Status = ReportSkipped
		report.Error = err.Error()
		return report
	}

	tradeDate, err := core.ExtractCompactDate(filename)
	if err != nil {
		report.Status = ReportSkipped
		report.Error = errors.FileRejected("missing date in filename, want a YYYYMMDD token").Error()
		return report
	}
	tradeDate = core.Day(tradeDate)
	report.TradeDate = tradeDate.Format(core.DateLayout)

	existing, err := s.files.GetByFilename(ctx, filename)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	// Hash the upload while it streams to storage. The blob stays only
	// if the workbook turns out to be ingestible.
	hasher := core.NewHasher()
	path, err := s.storage.Store(ctx, io.TeeReader(r, hasher), filename)
	if err != nil {
		report.Error = fmt.Sprintf("failed to store upload: %v", err)
		return report
	}
	contentHash := hasher.Sum()

	// Unchanged bytes under a known filename need no re-ingest.
	if existing != nil && existing.Status == ports.FileStatusLoaded && existing.ContentHash.Equals(contentHash) {
		s.storage.Delete(ctx, path)
		report.Status = ReportSkipped
		report.Rows = existing.RowCount
		return report
	}

	// Parse before touching the registry, so an invalid workbook is
	// never persisted and a bad re-upload never clobbers a good load.
	records, err := excel.NewReader(path).ReadDay(tradeDate)
	if err != nil {
		s.storage.Delete(ctx, path)
		if errors.GetCode(err) == errors.CodeFileRejected {
			s.log.Warn("Skipping %s: %v", filename, err)
			report.Status = ReportSkipped
		} else {
			s.log.Warn("Ingest failed for %s: %v", filename, err)
		}
		report.Error = err.Error()
		return report
	}

	if existing != nil {
		if err := s.removeStored(ctx, existing); err != nil {
			s.storage.Delete(ctx, path)
			report.Error = err.Error()
			return report
		}
		report.Overwritten = true
	}

	stored := &ports.StoredFile{
		ID:          core.FileID(core.NewID()),
		Filename:    filename,
		TradeDate:   tradeDate,
		FilePath:    path,
		ContentHash: contentHash,
		FileSize:    size,
		Status:      ports.FileStatusPending,
	}
	if err := s.files.Create(ctx, stored); err != nil {
		s.storage.Delete(ctx, path)
		report.Error = err.Error()
		return report
	}

	if err := s.activity.ReplaceDay(ctx, tradeDate, records); err != nil {
		s.log.Warn("Ingest failed for %s: %v", filename, err)
		if uerr := s.files.UpdateStatus(ctx, stored.ID, ports.FileStatusFailed, 0, err.Error()); uerr != nil {
			s.log.Error("Status update failed for %s: %v", filename, uerr)
		}
		report.Error = err.Error()
		return report
	}

	if err := s.files.UpdateStatus(ctx, stored.ID, ports.FileStatusLoaded, len(records), ""); err != nil {
		s.log.Error("Status update failed for %s: %v", filename, err)
	}
	s.cache.Invalidate()

	s.log.Info("Ingested %s: %d rows for %s", filename, len(records), report.TradeDate)
	report.Status = ReportStored
	report.Rows = len(records)
	return report
}

// validateUpload rejects files the pipeline will not attempt to parse.
func (s *IngestService) validateUpload(filename string, size int64) error {
	if strings.ToLower(filepath.Ext(filename)) != ".xlsx" {
		return errors.FileRejected("only .xlsx workbooks are accepted")
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return errors.FileRejected(fmt.Sprintf("file exceeds the %d byte limit", s.maxFileSize))
	}
	return nil
}

// ListFiles returns the registry, newest trade date first.
func (s *IngestService) ListFiles(ctx context.Context) ([]*ports.StoredFile, error) {
	return s.files.List(ctx)
}

// OpenFile returns the registry entry and a reader over the stored
// workbook bytes, for downloads. The caller closes the reader.
func (s *IngestService) OpenFile(ctx context.Context, id core.FileID) (*ports.StoredFile, io.ReadCloser, error) {
	stored, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Open(ctx, stored.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return stored, rc, nil
}

// DeleteFile removes one stored workbook, its registry entry and that
// trade date's activity rows.
func (s *IngestService) DeleteFile(ctx context.Context, id core.FileID) error {
	stored, err := s.files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.removeStored(ctx, stored); err != nil {
		return err
	}
	s.cache.Invalidate()
	s.log.Info("Deleted %s and activity for %s", stored.Filename, stored.TradeDate.Format(core.DateLayout))
	return nil
}

// Reload re-ingests every stored workbook and refreshes the dataset.
func (s *IngestService) Reload(ctx context.Context) ([]ingestion.Report, error) {
	reports, err := s.loader.Reload(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return reports, nil
}

// removeStored drops a registry entry, its blob and its activity rows.
func (s *IngestService) removeStored(ctx context.Context, stored *ports.StoredFile) error {
	if err := s.activity.DeleteDay(ctx, stored.TradeDate); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, stored.FilePath); err != nil {
		s.log.Warn("Blob delete failed for %s: %v", stored.Filename, err)
	}
	return s.files.Delete(ctx, stored.ID)
}

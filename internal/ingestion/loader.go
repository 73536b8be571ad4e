package ingestion

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"brokersum/adapters/excel"
	"brokersum/internal"
	"brokersum/ports"
)

// Report is the outcome of re-ingesting one stored workbook.
type Report struct {
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Error    string `json:"error,omitempty"`
}

// Loader re-ingests every stored workbook into the activity table with a
// bounded worker pool. Used to rebuild after schema changes or suspect
// loads; individual file failures do not stop the batch.
type Loader struct {
	files    ports.FileRepository
	activity ports.ActivityRepository
	workers  int
	log      *internal.Logger
}

// NewLoader creates a loader with the given parallelism.
func NewLoader(files ports.FileRepository, activity ports.ActivityRepository, workers int) *Loader {
	if workers < 1 {
		workers = 1
	}
	return &Loader{
		files:    files,
		activity: activity,
		workers:  workers,
		log:      internal.DefaultLogger.WithComponent("Loader"),
	}
}

// Reload parses and re-inserts every registered workbook. The returned
// reports are sorted by filename; failed files are marked failed in the
// registry and reported, not fatal.
func (l *Loader) Reload(ctx context.Context) ([]Report, error) {
	stored, err := l.files.List(ctx)
	if err != nil {
		return nil, err
	}
	l.log.Info("Reloading %d workbooks with %d workers", len(stored), l.workers)

	var mu sync.Mutex
	reports := make([]Report, 0, len(stored))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for _, f := range stored {
		g.Go(func() error {
			report := l.reloadOne(ctx, f)
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Filename < reports[j].Filename })
	return reports, nil
}

// reloadOne parses a single stored workbook and swaps in its trade date.
func (l *Loader) reloadOne(ctx context.Context, f *ports.StoredFile) Report {
	records, err := excel.NewReader(f.FilePath).ReadDay(f.TradeDate)
	if err == nil {
		err = l.activity.ReplaceDay(ctx, f.TradeDate, records)
	}

	if err != nil {
		l.log.Warn("Reload failed for %s: %v", f.Filename, err)
		if uerr := l.files.UpdateStatus(ctx, f.ID, ports.FileStatusFailed, 0, err.Error()); uerr != nil {
			l.log.Error("Status update failed for %s: %v", f.Filename, uerr)
		}
		return Report{Filename: f.Filename, Error: err.Error()}
	}

	if uerr := l.files.UpdateStatus(ctx, f.ID, ports.FileStatusLoaded, len(records), ""); uerr != nil {
		l.log.Error("Status update failed for %s: %v", f.Filename, uerr)
	}
	return Report{Filename: f.Filename, Rows: len(records)}
}

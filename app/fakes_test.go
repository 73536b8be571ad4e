package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"brokersum/domain/broker"
	"brokersum/domain/core"
	"brokersum/internal/errors"
	"brokersum/ports"
)

type memFileRepo struct {
	mu    sync.Mutex
	files map[core.FileID]*ports.StoredFile
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: make(map[core.FileID]*ports.StoredFile)}
}

func (r *memFileRepo) Create(ctx context.Context, f *ports.StoredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.files[f.ID] = &cp
	return nil
}

func (r *memFileRepo) GetByID(ctx context.Context, id core.FileID) (*ports.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, errors.NotFound("file")
	}
	cp := *f
	return &cp, nil
}

func (r *memFileRepo) GetByFilename(ctx context.Context, filename string) (*ports.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.Filename == filename {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memFileRepo) List(ctx context.Context) ([]*ports.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ports.StoredFile, 0, len(r.files))
	for _, f := range r.files {
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TradeDate.After(out[j].TradeDate) })
	return out, nil
}

func (r *memFileRepo) UpdateStatus(ctx context.Context, id core.FileID, status ports.FileStatus, rowCount int, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return errors.NotFound("file")
	}
	f.Status = status
	f.RowCount = rowCount
	f.ErrorMessage = errorMsg
	f.UpdatedAt = time.Now()
	return nil
}

func (r *memFileRepo) Delete(ctx context.Context, id core.FileID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return errors.NotFound("file")
	}
	delete(r.files, id)
	return nil
}

type memActivityRepo struct {
	mu       sync.Mutex
	days     map[string][]broker.ActivityRecord
	listAlls int
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{days: make(map[string][]broker.ActivityRecord)}
}

func (r *memActivityRepo) ReplaceDay(ctx context.Context, tradeDate time.Time, records []broker.ActivityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.days[tradeDate.Format(core.DateLayout)] = records
	return nil
}

func (r *memActivityRepo) DeleteDay(ctx context.Context, tradeDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.days, tradeDate.Format(core.DateLayout))
	return nil
}

func (r *memActivityRepo) ListAll(ctx context.Context) ([]broker.ActivityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listAlls++
	var out []broker.ActivityRecord
	for _, records := range r.days {
		out = append(out, records...)
	}
	return out, nil
}

func (r *memActivityRepo) ListRange(ctx context.Context, from, to time.Time) ([]broker.ActivityRecord, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []broker.ActivityRecord
	for _, rec := range all {
		if !rec.TradeDate.Before(from) && !rec.TradeDate.After(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeSummarizer struct {
	reply string
	err   error
	seen  string
}

func (s *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.seen = text
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

package app

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"brokersum/domain/broker"
	"brokersum/domain/core"
	"brokersum/internal"
	"brokersum/internal/errors"
	"brokersum/ports"
)

// SummaryRequest carries raw API query parameters. Empty values pick up
// the report defaults: Total Market, the value field, daily mode, and a
// window from January 1st of the latest loaded year through the latest
// loaded date.
type SummaryRequest struct {
	Brokers []string
	Fields  []string
	Mode    string
	From    string
	To      string
}

// SummaryResult is a resolved summary: the table rows plus the rolled-up
// market totals per period, and the window that was actually used.
type SummaryResult struct {
	Rows   []broker.SummaryRow  `json:"rows"`
	Market []broker.MarketPoint `json:"market"`
	From   string               `json:"from"`
	To     string               `json:"to"`
	Mode   broker.Mode          `json:"mode"`
}

// SummaryService answers summary, ranking and export queries against the
// cached dataset, and raw activity views straight from the repository.
type SummaryService struct {
	cache    *DatasetCache
	activity ports.ActivityRepository
	log      *internal.Logger
}

// NewSummaryService creates the query service.
func NewSummaryService(cache *DatasetCache, activity ports.ActivityRepository) *SummaryService {
	return &SummaryService{
		cache:    cache,
		activity: activity,
		log:      internal.DefaultLogger.WithComponent("SummaryService"),
	}
}

// Summarize resolves defaults, validates the request and runs the rollup.
func (s *SummaryService) Summarize(ctx context.Context, req SummaryRequest) (*SummaryResult, error) {
	ds, q, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	rows, market, err := ds.Summarize(q)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	return &SummaryResult{
		Rows:   rows,
		Market: market,
		From:   q.From.Format(core.DateLayout),
		To:     q.To.Format(core.DateLayout),
		Mode:   q.Mode,
	}, nil
}

// ExportCSV streams a summary as CSV with the columns Tanggal, Broker,
// Field, Value, %.
func (s *SummaryService) ExportCSV(ctx context.Context, req SummaryRequest, w io.Writer) error {
	result, err := s.Summarize(ctx, req)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Tanggal", "Broker", "Field", "Value", "%"}); err != nil {
		return err
	}
	for _, row := range result.Rows {
		record := []string{
			row.Label,
			row.Broker,
			row.Field.ColumnHeader(),
			broker.FormatGrouped(row.Value),
			broker.FormatPct(row.Pct),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Rankings sums one measure per broker over the window and ranks the
// result, market row excluded.
func (s *SummaryService) Rankings(ctx context.Context, field, from, to string) ([]broker.RankingRow, int64, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, 0, err
	}

	f := broker.FieldValue
	if field != "" {
		if f, err = broker.ParseField(field); err != nil {
			return nil, 0, errors.InvalidInput(err.Error())
		}
	}
	fromDate, toDate, err := s.resolveWindow(ds, from, to)
	if err != nil {
		return nil, 0, err
	}

	rows, grand, err := ds.Rank(broker.RankingQuery{Field: f, From: fromDate, To: toDate})
	if err != nil {
		return nil, 0, errors.InvalidInput(err.Error())
	}
	return rows, grand, nil
}

// Activity returns the raw per-broker rows inside the window, for the
// data view. Defaults follow the summary window.
func (s *SummaryService) Activity(ctx context.Context, from, to string) ([]broker.ActivityRecord, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	fromDate, toDate, err := s.resolveWindow(ds, from, to)
	if err != nil {
		return nil, err
	}
	return s.activity.ListRange(ctx, fromDate, toDate)
}

// Brokers lists every selectable broker label, Total Market first.
func (s *SummaryService) Brokers(ctx context.Context) ([]string, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Labels(), nil
}

// resolve loads the dataset and turns the raw request into a validated
// domain query with defaults applied.
func (s *SummaryService) resolve(ctx context.Context, req SummaryRequest) (*broker.Dataset, broker.SummaryQuery, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, broker.SummaryQuery{}, err
	}

	q := broker.SummaryQuery{Brokers: req.Brokers}
	if len(q.Brokers) == 0 {
		q.Brokers = []string{broker.MarketLabel}
	}

	if len(req.Fields) == 0 {
		q.Fields = []broker.Field{broker.FieldValue}
	} else {
		for _, raw := range req.Fields {
			f, err := broker.ParseField(raw)
			if err != nil {
				return nil, broker.SummaryQuery{}, errors.InvalidInput(err.Error())
			}
			q.Fields = append(q.Fields, f)
		}
	}

	if q.Mode, err = broker.ParseMode(req.Mode); err != nil {
		return nil, broker.SummaryQuery{}, errors.InvalidInput(err.Error())
	}

	if q.From, q.To, err = s.resolveWindow(ds, req.From, req.To); err != nil {
		return nil, broker.SummaryQuery{}, err
	}
	return ds, q, nil
}

// resolveWindow parses the date range, defaulting to January 1st of the
// latest loaded year through the latest loaded date.
func (s *SummaryService) resolveWindow(ds *broker.Dataset, from, to string) (time.Time, time.Time, error) {
	fromDate := core.YearStart(ds.MaxDate())
	toDate := ds.MaxDate()

	var err error
	if from != "" {
		if fromDate, err = core.ParseDate(from); err != nil {
			return time.Time{}, time.Time{}, errors.InvalidInput(err.Error())
		}
	}
	if to != "" {
		if toDate, err = core.ParseDate(to); err != nil {
			return time.Time{}, time.Time{}, errors.InvalidInput(err.Error())
		}
	}
	if toDate.Before(fromDate) {
		return time.Time{}, time.Time{}, errors.InvalidInput("date range end is before start")
	}
	return fromDate, toDate, nil
}

// dataset fetches the cached dataset, rejecting queries when nothing has
// been uploaded yet.
func (s *SummaryService) dataset(ctx context.Context) (*broker.Dataset, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	if ds.IsEmpty() {
		return nil, errors.NotFound("broker data")
	}
	return ds, nil
}

package broker

import (
	"sort"
	"time"
)

// Dataset is the combined in-memory view over every loaded activity record.
// It resolves display labels (latest known name per broker code) and keeps
// per-date market totals so summaries can compute shares.
type Dataset struct {
	records []ActivityRecord
	labels  map[string]string    // broker_code -> "CODE_LatestName"
	totals  map[time.Time]totals // trade_date -> market-wide sums
	minDate time.Time
	maxDate time.Time
}

type totals struct {
	volume    int64
	value     int64
	frequency int64
}

func (t totals) amount(f Field) int64 {
	switch f {
	case FieldVolume:
		return t.volume
	case FieldValue:
		return t.value
	case FieldFrequency:
		return t.frequency
	}
	return 0
}

// BuildDataset combines raw activity records into a queryable dataset.
// Broker names drift across files; the label for a code always uses the
// name seen on the most recent trade date that mentions it.
func BuildDataset(records []ActivityRecord) *Dataset {
	ds := &Dataset{
		records: records,
		labels:  make(map[string]string),
		totals:  make(map[time.Time]totals),
	}

	latestNameDate := make(map[string]time.Time)
	latestName := make(map[string]string)

	for _, r := range records {
		if ds.minDate.IsZero() || r.TradeDate.Before(ds.minDate) {
			ds.minDate = r.TradeDate
		}
		if r.TradeDate.After(ds.maxDate) {
			ds.maxDate = r.TradeDate
		}

		if seen, ok := latestNameDate[r.BrokerCode]; !ok || !r.TradeDate.Before(seen) {
			latestNameDate[r.BrokerCode] = r.TradeDate
			latestName[r.BrokerCode] = r.BrokerName
		}

		t := ds.totals[r.TradeDate]
		t.volume += r.Volume
		t.value += r.Value
		t.frequency += r.Frequency
		ds.totals[r.TradeDate] = t
	}

	for code, name := range latestName {
		ds.labels[code] = code + "_" + name
	}

	return ds
}

// Label returns the display label for a broker code.
func (d *Dataset) Label(code string) string {
	if code == MarketCode {
		return MarketLabel
	}
	return d.labels[code]
}

// Labels lists every broker label plus the synthetic Total Market entry,
// Total Market first, the rest sorted.
func (d *Dataset) Labels() []string {
	out := make([]string, 0, len(d.labels)+1)
	for _, label := range d.labels {
		out = append(out, label)
	}
	sort.Strings(out)
	if len(d.labels) > 0 {
		out = append([]string{MarketLabel}, out...)
	}
	return out
}

// IsEmpty reports whether any records were loaded.
func (d *Dataset) IsEmpty() bool {
	return len(d.records) == 0
}

// MinDate returns the earliest loaded trade date.
func (d *Dataset) MinDate() time.Time { return d.minDate }

// MaxDate returns the latest loaded trade date.
func (d *Dataset) MaxDate() time.Time { return d.maxDate }

// marketTotal returns the market-wide sum for one trade date and field.
func (d *Dataset) marketTotal(date time.Time, f Field) int64 {
	return d.totals[date].amount(f)
}

// inRange reports whether a trade date falls inside [from, to] inclusive.
func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

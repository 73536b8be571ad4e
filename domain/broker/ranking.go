package broker

import (
	"fmt"
	"sort"
	"time"
)

// RankingQuery selects the measure and window for a broker ranking.
type RankingQuery struct {
	Field Field
	From  time.Time
	To    time.Time
}

// Validate rejects unusable ranking windows.
func (q RankingQuery) Validate() error {
	if q.Field == "" {
		return fmt.Errorf("ranking field is required")
	}
	if q.From.IsZero() || q.To.IsZero() || q.To.Before(q.From) {
		return fmt.Errorf("invalid date range")
	}
	return nil
}

// RankingRow is one broker's position in a ranking table.
type RankingRow struct {
	Rank   int     `json:"rank"`
	Broker string  `json:"broker"`
	Total  int64   `json:"total"`
	Share  float64 `json:"share"`
}

// Rank sums the selected measure per broker over the window, excluding the
// synthetic market row, and orders brokers by descending total. Share is
// each broker's slice of the grand total. Ties keep label order so the
// output is deterministic.
func (d *Dataset) Rank(q RankingQuery) ([]RankingRow, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}

	sums := make(map[string]int64)
	var grand int64
	for _, r := range d.records {
		if !inRange(r.TradeDate, q.From, q.To) {
			continue
		}
		label := d.Label(r.BrokerCode)
		sums[label] += r.Amount(q.Field)
		grand += r.Amount(q.Field)
	}

	rows := make([]RankingRow, 0, len(sums))
	for label, total := range sums {
		rows = append(rows, RankingRow{Broker: label, Total: total, Share: share(total, grand)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Broker < rows[j].Broker
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows, grand, nil
}

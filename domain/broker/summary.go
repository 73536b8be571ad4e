package broker

import (
	"fmt"
	"sort"
	"time"
)

// SummaryQuery filters and shapes a summary request. Zero values are not
// defaulted here; the service layer resolves defaults before calling in.
type SummaryQuery struct {
	Brokers []string // display labels, MarketLabel selects the synthetic row
	Fields  []Field
	Mode    Mode
	From    time.Time
	To      time.Time
}

// Validate rejects queries with nothing selected or a backwards window.
func (q SummaryQuery) Validate() error {
	if len(q.Brokers) == 0 {
		return fmt.Errorf("at least one broker must be selected")
	}
	if len(q.Fields) == 0 {
		return fmt.Errorf("at least one field must be selected")
	}
	if q.From.IsZero() || q.To.IsZero() || q.To.Before(q.From) {
		return fmt.Errorf("invalid date range")
	}
	return nil
}

// SummaryRow is one (period, broker, field) cell of a summary, with the
// broker's share of the period market total.
type SummaryRow struct {
	Period time.Time `json:"period"`
	Label  string    `json:"label"`
	Broker string    `json:"broker"`
	Field  Field     `json:"field"`
	Value  int64     `json:"value"`
	Pct    float64   `json:"pct"`
}

// MarketPoint is the rolled-up market total for one period and field.
type MarketPoint struct {
	Period time.Time `json:"period"`
	Field  Field     `json:"field"`
	Total  int64     `json:"total"`
}

// Summarize rolls the dataset up to the query's granularity. Shares are
// computed against the market totals rolled up the same way, so a broker's
// monthly percentage is its monthly sum over the monthly market sum, not an
// average of daily percentages. Total Market rows report 100 when the
// period total is non-zero.
func (d *Dataset) Summarize(q SummaryQuery) ([]SummaryRow, []MarketPoint, error) {
	if err := q.Validate(); err != nil {
		return nil, nil, err
	}

	wanted := make(map[string]bool, len(q.Brokers))
	for _, b := range q.Brokers {
		wanted[b] = true
	}

	type cell struct {
		period time.Time
		label  string
		field  Field
	}
	sums := make(map[cell]int64)
	marketSums := make(map[cell]int64)

	for _, r := range d.records {
		if !inRange(r.TradeDate, q.From, q.To) {
			continue
		}
		period := q.Mode.PeriodStart(r.TradeDate)
		label := d.Label(r.BrokerCode)
		for _, f := range q.Fields {
			marketSums[cell{period, MarketLabel, f}] += r.Amount(f)
			if wanted[label] {
				sums[cell{period, label, f}] += r.Amount(f)
			}
		}
	}

	rows := make([]SummaryRow, 0, len(sums)+len(marketSums))
	for c, v := range sums {
		market := marketSums[cell{c.period, MarketLabel, c.field}]
		rows = append(rows, SummaryRow{
			Period: c.period,
			Label:  q.Mode.FormatPeriod(c.period),
			Broker: c.label,
			Field:  c.field,
			Value:  v,
			Pct:    share(v, market),
		})
	}
	if wanted[MarketLabel] {
		for c, v := range marketSums {
			pct := 0.0
			if v != 0 {
				pct = 100.0
			}
			rows = append(rows, SummaryRow{
				Period: c.period,
				Label:  q.Mode.FormatPeriod(c.period),
				Broker: MarketLabel,
				Field:  c.field,
				Value:  v,
				Pct:    pct,
			})
		}
	}

	sortSummaryRows(rows)

	market := make([]MarketPoint, 0, len(marketSums))
	for c, v := range marketSums {
		market = append(market, MarketPoint{Period: c.period, Field: c.field, Total: v})
	}
	sort.Slice(market, func(i, j int) bool {
		if !market[i].Period.Equal(market[j].Period) {
			return market[i].Period.Before(market[j].Period)
		}
		return market[i].Field < market[j].Field
	})

	return rows, market, nil
}

// sortSummaryRows orders by period, then Total Market ahead of brokers,
// then broker label, then field.
func sortSummaryRows(rows []SummaryRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Period.Equal(b.Period) {
			return a.Period.Before(b.Period)
		}
		if (a.Broker == MarketLabel) != (b.Broker == MarketLabel) {
			return a.Broker == MarketLabel
		}
		if a.Broker != b.Broker {
			return a.Broker < b.Broker
		}
		return a.Field < b.Field
	})
}

// share computes v's percentage of total, guarding the zero-market case.
func share(v, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(v) / float64(total) * 100
}

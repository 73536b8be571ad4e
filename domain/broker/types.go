package broker

import (
	"fmt"
	"strings"
	"time"
)

// Field selects one of the three activity measures carried by every
// daily broker record.
type Field string

const (
	FieldVolume    Field = "volume"
	FieldValue     Field = "value"
	FieldFrequency Field = "frequency"
)

// ParseField parses a field name from an API query parameter.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldVolume:
		return FieldVolume, nil
	case FieldValue:
		return FieldValue, nil
	case FieldFrequency:
		return FieldFrequency, nil
	}
	return "", fmt.Errorf("unknown field %q (want volume, value or frequency)", s)
}

// ColumnHeader returns the source workbook header for the field.
// The exchange exports use Indonesian headers.
func (f Field) ColumnHeader() string {
	switch f {
	case FieldVolume:
		return "Volume"
	case FieldValue:
		return "Nilai"
	case FieldFrequency:
		return "Frekuensi"
	}
	return string(f)
}

// AllFields lists the measures in display order.
func AllFields() []Field {
	return []Field{FieldVolume, FieldValue, FieldFrequency}
}

// Synthetic market-wide aggregate identity. The dataset injects one such
// row per trade date so shares can be computed against it.
const (
	MarketCode  = "TOTAL"
	MarketLabel = "Total Market"
)

// ActivityRecord is one broker's activity for one trade date, as parsed
// from a daily workbook row.
type ActivityRecord struct {
	TradeDate  time.Time `db:"trade_date" json:"trade_date"`
	BrokerCode string    `db:"broker_code" json:"broker_code"`
	BrokerName string    `db:"broker_name" json:"broker_name"`
	Volume     int64     `db:"volume" json:"volume"`
	Value      int64     `db:"value" json:"value"`
	Frequency  int64     `db:"frequency" json:"frequency"`
}

// Amount returns the record's measure for the given field.
func (r ActivityRecord) Amount(f Field) int64 {
	switch f {
	case FieldVolume:
		return r.Volume
	case FieldValue:
		return r.Value
	case FieldFrequency:
		return r.Frequency
	}
	return 0
}

// Mode selects the reporting granularity of a summary.
type Mode string

const (
	ModeDaily   Mode = "daily"
	ModeMonthly Mode = "monthly"
	ModeYearly  Mode = "yearly"
)

// ParseMode parses a reporting mode, defaulting to daily for the empty string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return ModeDaily, nil
	case ModeDaily:
		return ModeDaily, nil
	case ModeMonthly:
		return ModeMonthly, nil
	case ModeYearly:
		return ModeYearly, nil
	}
	return "", fmt.Errorf("unknown mode %q (want daily, monthly or yearly)", s)
}

// PeriodStart truncates a trade date to the start of its reporting period.
func (m Mode) PeriodStart(t time.Time) time.Time {
	switch m {
	case ModeMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case ModeYearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatPeriod renders a period start the way the reports label it:
// "2 Jan 2006" daily, "Jan 2006" monthly, "2006" yearly.
func (m Mode) FormatPeriod(t time.Time) string {
	switch m {
	case ModeMonthly:
		return t.Format("Jan 2006")
	case ModeYearly:
		return t.Format("2006")
	}
	return t.Format("2 Jan 2006")
}

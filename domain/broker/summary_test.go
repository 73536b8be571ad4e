package broker

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords() []ActivityRecord {
	return []ActivityRecord{
		{TradeDate: date(2025, 1, 2), BrokerCode: "AA", BrokerName: "Alpha Sekuritas", Volume: 100, Value: 1000, Frequency: 10},
		{TradeDate: date(2025, 1, 2), BrokerCode: "BB", BrokerName: "Beta Sekuritas", Volume: 300, Value: 3000, Frequency: 30},
		{TradeDate: date(2025, 2, 3), BrokerCode: "AA", BrokerName: "Alpha Sekuritas Tbk", Volume: 200, Value: 2000, Frequency: 20},
		{TradeDate: date(2025, 2, 3), BrokerCode: "BB", BrokerName: "Beta Sekuritas", Volume: 200, Value: 2000, Frequency: 20},
	}
}

func TestBuildDataset_LatestNameWinsLabel(t *testing.T) {
	ds := BuildDataset(sampleRecords())

	if got := ds.Label("AA"); got != "AA_Alpha Sekuritas Tbk" {
		t.Fatalf("label for AA = %q, want latest name variant", got)
	}
	if got := ds.Label(MarketCode); got != MarketLabel {
		t.Fatalf("market label = %q", got)
	}
}

func TestDataset_LabelsPutMarketFirst(t *testing.T) {
	ds := BuildDataset(sampleRecords())
	labels := ds.Labels()

	if len(labels) != 3 {
		t.Fatalf("got %d labels: %v", len(labels), labels)
	}
	if labels[0] != MarketLabel {
		t.Fatalf("first label = %q, want %q", labels[0], MarketLabel)
	}
	if labels[1] >= labels[2] {
		t.Fatalf("broker labels not sorted: %v", labels)
	}
}

func TestSummarize_DailyShares(t *testing.T) {
	ds := BuildDataset(sampleRecords())

	rows, market, err := ds.Summarize(SummaryQuery{
		Brokers: []string{"AA_Alpha Sekuritas Tbk", MarketLabel},
		Fields:  []Field{FieldValue},
		Mode:    ModeDaily,
		From:    date(2025, 1, 1),
		To:      date(2025, 1, 31),
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows: %+v", len(rows), rows)
	}
	// Total Market sorts first within the period.
	if rows[0].Broker != MarketLabel || rows[0].Value != 4000 || rows[0].Pct != 100 {
		t.Fatalf("market row = %+v", rows[0])
	}
	if rows[1].Value != 1000 || rows[1].Pct != 25 {
		t.Fatalf("broker row = %+v", rows[1])
	}
	if len(market) != 1 || market[0].Total != 4000 {
		t.Fatalf("market points = %+v", market)
	}
}

func TestSummarize_MonthlyRollupComputesShareAfterRollup(t *testing.T) {
	ds := BuildDataset(sampleRecords())

	rows, _, err := ds.Summarize(SummaryQuery{
		Brokers: []string{"AA_Alpha Sekuritas Tbk"},
		Fields:  []Field{FieldVolume},
		Mode:    ModeYearly,
		From:    date(2025, 1, 1),
		To:      date(2025, 12, 31),
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d rows: %+v", len(rows), rows)
	}
	// 300 of 800 over the year, not an average of daily shares.
	if rows[0].Value != 300 {
		t.Fatalf("yearly volume = %d, want 300", rows[0].Value)
	}
	if rows[0].Pct != 37.5 {
		t.Fatalf("yearly share = %v, want 37.5", rows[0].Pct)
	}
	if rows[0].Label != "2025" {
		t.Fatalf("yearly label = %q", rows[0].Label)
	}
}

func TestSummarize_EmptyWindowReturnsNoRows(t *testing.T) {
	ds := BuildDataset(sampleRecords())

	rows, market, err := ds.Summarize(SummaryQuery{
		Brokers: []string{MarketLabel},
		Fields:  []Field{FieldValue},
		Mode:    ModeDaily,
		From:    date(2024, 1, 1),
		To:      date(2024, 12, 31),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 || len(market) != 0 {
		t.Fatalf("expected empty result, got %d rows, %d market points", len(rows), len(market))
	}
}

func TestSummarize_RejectsEmptySelections(t *testing.T) {
	ds := BuildDataset(sampleRecords())

	if _, _, err := ds.Summarize(SummaryQuery{Fields: []Field{FieldValue}, Mode: ModeDaily, From: date(2025, 1, 1), To: date(2025, 2, 1)}); err == nil {
		t.Fatal("expected error for missing brokers")
	}
	if _, _, err := ds.Summarize(SummaryQuery{Brokers: []string{MarketLabel}, Mode: ModeDaily, From: date(2025, 1, 1), To: date(2025, 2, 1)}); err == nil {
		t.Fatal("expected error for missing fields")
	}
	if _, _, err := ds.Summarize(SummaryQuery{Brokers: []string{MarketLabel}, Fields: []Field{FieldValue}, Mode: ModeDaily, From: date(2025, 2, 1), To: date(2025, 1, 1)}); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestShare_ZeroMarketIsZeroNotNaN(t *testing.T) {
	if got := share(10, 0); got != 0 {
		t.Fatalf("share with zero market = %v", got)
	}
}

package excel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"brokersum/domain/broker"
)

func writeWorkbook(t *testing.T, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(SheetName, cell, &row))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadDay_ParsesRowsAndStampsDate(t *testing.T) {
	path := writeWorkbook(t, "20250102_broker.xlsx", [][]interface{}{
		{" Kode Perusahaan ", "Nama Perusahaan", "Volume", "Nilai", "Frekuensi"},
		{"AA", " Alpha Sekuritas ", 100, "1,000", 10},
		{"BB", "Beta Sekuritas", 300, 3000, 30},
	})

	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	records, err := NewReader(path).ReadDay(day)
	require.NoError(t, err)

	require.Len(t, records, 2)
	require.Equal(t, broker.ActivityRecord{
		TradeDate:  day,
		BrokerCode: "AA",
		BrokerName: "Alpha Sekuritas",
		Volume:     100,
		Value:      1000,
		Frequency:  10,
	}, records[0])
}

func TestReadDay_MissingColumnFails(t *testing.T) {
	path := writeWorkbook(t, "20250102_bad.xlsx", [][]interface{}{
		{"Kode Perusahaan", "Nama Perusahaan", "Volume", "Nilai"},
		{"AA", "Alpha", 1, 2},
	})

	_, err := NewReader(path).ReadDay(time.Now())
	require.ErrorContains(t, err, "Frekuensi")
}

func TestReadDay_HeaderOnlyFails(t *testing.T) {
	path := writeWorkbook(t, "20250102_empty.xlsx", [][]interface{}{
		{"Kode Perusahaan", "Nama Perusahaan", "Volume", "Nilai", "Frekuensi"},
	})

	_, err := NewReader(path).ReadDay(time.Now())
	require.Error(t, err)
}

func TestReadDay_SkipsBlankCodesAndDeduplicates(t *testing.T) {
	path := writeWorkbook(t, "20250102_dupes.xlsx", [][]interface{}{
		{"Kode Perusahaan", "Nama Perusahaan", "Volume", "Nilai", "Frekuensi"},
		{"", "No Code", 1, 1, 1},
		{"AA", "Alpha", 1, 1, 1},
		{"AA", "Alpha Revised", 2, 2, 2},
	})

	records, err := NewReader(path).ReadDay(time.Now())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Alpha Revised", records[0].BrokerName)
	require.Equal(t, int64(2), records[0].Volume)
}

func TestReadDay_BadNumericCellFails(t *testing.T) {
	path := writeWorkbook(t, "20250102_nan.xlsx", [][]interface{}{
		{"Kode Perusahaan", "Nama Perusahaan", "Volume", "Nilai", "Frekuensi"},
		{"AA", "Alpha", "many", 1, 1},
	})

	_, err := NewReader(path).ReadDay(time.Now())
	require.ErrorContains(t, err, "Volume")
}

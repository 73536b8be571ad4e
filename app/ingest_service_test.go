package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"brokersum/internal/errors"
	"brokersum/internal/ingestion"
	"brokersum/internal/storage"
	"brokersum/ports"
)

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	header := []interface{}{"Kode Perusahaan", "Nama Perusahaan", "Volume", "Nilai", "Frekuensi"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func newIngestFixture(t *testing.T) (*IngestService, *memFileRepo, *memActivityRepo) {
	t.Helper()
	files := newMemFileRepo()
	activity := newMemActivityRepo()
	cache := NewDatasetCache(activity, time.Hour)
	blobs := storage.NewLocalStorage(t.TempDir())
	loader := ingestion.NewLoader(files, activity, 2)
	return NewIngestService(files, activity, blobs, cache, loader, 50*1024*1024), files, activity
}

func TestIngestUpload_StoresAndParses(t *testing.T) {
	svc, files, activity := newIngestFixture(t)

	buf := workbookBytes(t, [][]interface{}{
		{"AA", "Alpha Sekuritas", 100, 1000, 10},
		{"BB", "Beta Sekuritas", 200, 2000, 20},
	})
	report := svc.IngestUpload(context.Background(), "broker_20250102.xlsx", int64(buf.Len()), buf)

	require.Equal(t, ReportStored, report.Status)
	require.Equal(t, 2, report.Rows)
	require.Equal(t, "2025-01-02", report.TradeDate)
	require.False(t, report.Overwritten)

	stored, err := files.GetByFilename(context.Background(), "broker_20250102.xlsx")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, ports.FileStatusLoaded, stored.Status)
	require.Equal(t, 2, stored.RowCount)
	require.Len(t, activity.days["2025-01-02"], 2)
}

func TestIngestUpload_SkipsRejectedUploads(t *testing.T) {
	svc, files, _ := newIngestFixture(t)
	ctx := context.Background()

	report := svc.IngestUpload(ctx, "notes_20250102.csv", 10, bytes.NewBufferString("x"))
	require.Equal(t, ReportSkipped, report.Status)
	require.Contains(t, report.Error, ".xlsx")

	report = svc.IngestUpload(ctx, "no_date_here.xlsx", 10, bytes.NewBufferString("x"))
	require.Equal(t, ReportSkipped, report.Status)
	require.Contains(t, report.Error, "missing date in filename")

	// Rejected files leave no registry trace.
	listed, err := files.List(ctx)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestIngestUpload_SkipsOversizeFile(t *testing.T) {
	files := newMemFileRepo()
	activity := newMemActivityRepo()
	cache := NewDatasetCache(activity, time.Hour)
	blobs := storage.NewLocalStorage(t.TempDir())
	loader := ingestion.NewLoader(files, activity, 1)
	svc := NewIngestService(files, activity, blobs, cache, loader, 100)

	report := svc.IngestUpload(context.Background(), "broker_20250102.xlsx", 200, bytes.NewBufferString("x"))
	require.Equal(t, ReportSkipped, report.Status)
	require.Contains(t, report.Error, "limit")
}

func TestIngestUpload_SkipsMissingColumnsWithoutPersisting(t *testing.T) {
	svc, files, activity := newIngestFixture(t)
	ctx := context.Background()

	f := excelize.NewFile()
	header := []interface{}{"Kode Perusahaan", "Nama Perusahaan", "Volume", "Nilai"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	row := []interface{}{"AA", "Alpha Sekuritas", 100, 1000}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	report := svc.IngestUpload(ctx, "broker_20250102.xlsx", int64(buf.Len()), buf)
	require.Equal(t, ReportSkipped, report.Status)
	require.Contains(t, report.Error, "missing required columns")

	// Nothing registered, so a reload has nothing to chew on.
	listed, err := files.List(ctx)
	require.NoError(t, err)
	require.Empty(t, listed)
	require.Empty(t, activity.days)

	reports, err := svc.Reload(ctx)
	require.NoError(t, err)
	require.Empty(t, reports)
}

func TestIngestUpload_OverwriteReplacesDay(t *testing.T) {
	svc, files, activity := newIngestFixture(t)
	ctx := context.Background()

	first := workbookBytes(t, [][]interface{}{
		{"AA", "Alpha Sekuritas", 100, 1000, 10},
		{"BB", "Beta Sekuritas", 200, 2000, 20},
	})
	report := svc.IngestUpload(ctx, "broker_20250102.xlsx", int64(first.Len()), first)
	require.Equal(t, ReportStored, report.Status)

	second := workbookBytes(t, [][]interface{}{
		{"AA", "Alpha Sekuritas", 150, 1500, 15},
	})
	report = svc.IngestUpload(ctx, "broker_20250102.xlsx", int64(second.Len()), second)
	require.Equal(t, ReportStored, report.Status)
	require.True(t, report.Overwritten)
	require.Equal(t, 1, report.Rows)

	// One registry entry, and the day holds only the new rows.
	listed, err := files.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Len(t, activity.days["2025-01-02"], 1)
	require.Equal(t, int64(150), activity.days["2025-01-02"][0].Volume)
}

func TestIngestUpload_UnchangedReuploadSkipped(t *testing.T) {
	svc, files, activity := newIngestFixture(t)
	ctx := context.Background()

	data := workbookBytes(t, [][]interface{}{
		{"AA", "Alpha Sekuritas", 100, 1000, 10},
	}).Bytes()

	report := svc.IngestUpload(ctx, "broker_20250102.xlsx", int64(len(data)), bytes.NewReader(data))
	require.Equal(t, ReportStored, report.Status)

	report = svc.IngestUpload(ctx, "broker_20250102.xlsx", int64(len(data)), bytes.NewReader(data))
	require.Equal(t, ReportSkipped, report.Status)
	require.False(t, report.Overwritten)
	require.Equal(t, 1, report.Rows)

	listed, err := files.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, ports.FileStatusLoaded, listed[0].Status)
	require.Len(t, activity.days["2025-01-02"], 1)
}

func TestIngestUpload_HeaderOnlyWorkbookFails(t *testing.T) {
	svc, files, activity := newIngestFixture(t)

	f := excelize.NewFile()
	header := []interface{}{"Kode Perusahaan", "Nama Perusahaan", "Volume", "Nilai", "Frekuensi"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	report := svc.IngestUpload(context.Background(), "broker_20250102.xlsx", int64(buf.Len()), buf)
	require.Equal(t, ReportFailed, report.Status)
	require.NotEmpty(t, report.Error)

	// Unparseable workbooks are never persisted.
	stored, err := files.GetByFilename(context.Background(), "broker_20250102.xlsx")
	require.NoError(t, err)
	require.Nil(t, stored)
	require.Empty(t, activity.days)
}

func TestIngestUpload_BadReuploadKeepsEarlierLoad(t *testing.T) {
	svc, files, activity := newIngestFixture(t)
	ctx := context.Background()

	good := workbookBytes(t, [][]interface{}{{"AA", "Alpha Sekuritas", 100, 1000, 10}})
	report := svc.IngestUpload(ctx, "broker_20250102.xlsx", int64(good.Len()), good)
	require.Equal(t, ReportStored, report.Status)

	f := excelize.NewFile()
	header := []interface{}{"Kode Perusahaan", "Nama Perusahaan", "Volume", "Nilai"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	row := []interface{}{"AA", "Alpha Sekuritas", 1, 1}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	bad, err := f.WriteToBuffer()
	require.NoError(t, err)

	report = svc.IngestUpload(ctx, "broker_20250102.xlsx", int64(bad.Len()), bad)
	require.Equal(t, ReportSkipped, report.Status)

	// The first load survives the invalid replacement attempt.
	stored, err := files.GetByFilename(ctx, "broker_20250102.xlsx")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, ports.FileStatusLoaded, stored.Status)
	require.Len(t, activity.days["2025-01-02"], 1)
}

func TestDeleteFile_RemovesDayAndRegistry(t *testing.T) {
	svc, files, activity := newIngestFixture(t)
	ctx := context.Background()

	buf := workbookBytes(t, [][]interface{}{{"AA", "Alpha Sekuritas", 100, 1000, 10}})
	report := svc.IngestUpload(ctx, "broker_20250102.xlsx", int64(buf.Len()), buf)
	require.Equal(t, ReportStored, report.Status)

	stored, err := files.GetByFilename(ctx, "broker_20250102.xlsx")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteFile(ctx, stored.ID))

	listed, err := files.List(ctx)
	require.NoError(t, err)
	require.Empty(t, listed)
	require.Empty(t, activity.days)

	err = svc.DeleteFile(ctx, stored.ID)
	require.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestReload_ReingestsStoredWorkbooks(t *testing.T) {
	svc, _, activity := newIngestFixture(t)
	ctx := context.Background()

	buf := workbookBytes(t, [][]interface{}{{"AA", "Alpha Sekuritas", 100, 1000, 10}})
	report := svc.IngestUpload(ctx, "broker_20250102.xlsx", int64(buf.Len()), buf)
	require.Equal(t, ReportStored, report.Status)

	// Wipe the table, then reload from the stored blob.
	require.NoError(t, activity.DeleteDay(ctx, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	reports, err := svc.Reload(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, 1, reports[0].Rows)
	require.Len(t, activity.days["2025-01-02"], 1)
}

package excel

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"brokersum/domain/broker"
	"brokersum/internal/errors"

	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet every daily export carries its data on.
const SheetName = "Sheet1"

// RequiredColumns are the headers a daily workbook must contain, as the
// exchange exports them. Header cells are trimmed before matching.
var RequiredColumns = []string{
	"Kode Perusahaan",
	"Nama Perusahaan",
	"Volume",
	"Nilai",
	"Frekuensi",
}

// Reader parses one daily broker workbook.
type Reader struct {
	filePath string
}

// NewReader creates a reader for the given workbook path.
func NewReader(filePath string) *Reader {
	return &Reader{filePath: filePath}
}

// ReadDay reads the workbook and stamps every row with the trade date.
// Rows with an empty broker code are dropped; when a code repeats inside
// one file the last row wins.
func (r *Reader) ReadDay(tradeDate time.Time) ([]broker.ActivityRecord, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", r.filePath)
	}

	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	// A missing sheet means the workbook is not a daily export at all;
	// callers skip these rather than fail them.
	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, errors.FileRejected(fmt.Sprintf("missing sheet %s: %v", SheetName, err))
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook must have a header row and at least one data row")
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]int)
	records := make([]broker.ActivityRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		code := strings.TrimSpace(cellAt(row, cols["Kode Perusahaan"]))
		if code == "" {
			continue
		}

		volume, err := parseAmount(cellAt(row, cols["Volume"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad Volume: %w", i+2, err)
		}
		value, err := parseAmount(cellAt(row, cols["Nilai"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad Nilai: %w", i+2, err)
		}
		frequency, err := parseAmount(cellAt(row, cols["Frekuensi"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad Frekuensi: %w", i+2, err)
		}

		rec := broker.ActivityRecord{
			TradeDate:  tradeDate,
			BrokerCode: code,
			BrokerName: strings.TrimSpace(cellAt(row, cols["Nama Perusahaan"])),
			Volume:     volume,
			Value:      value,
			Frequency:  frequency,
		}

		if prev, seen := byCode[code]; seen {
			records[prev] = rec
			continue
		}
		byCode[code] = len(records)
		records = append(records, rec)
	}

	log.Printf("[ExcelReader] %s parsed (%d rows)", r.filePath, len(records))
	return records, nil
}

// mapColumns resolves each required header to its column index.
func mapColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	cols := make(map[string]int, len(RequiredColumns))
	var missing []string
	for _, name := range RequiredColumns {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = i
	}
	if len(missing) > 0 {
		return nil, errors.FileRejected("missing required columns: " + strings.Join(missing, ", "))
	}
	return cols, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// parseAmount accepts plain integers plus the grouped and scientific
// renderings spreadsheet cells come back as. Empty cells count as zero.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return int64(f), nil
}

// Package xlsx implements source.Source over Excel workbooks.
package xlsx

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/strataguard/riskdata/source"
)

// Reader loads .xlsx workbooks. Sheets that fail to decode are skipped
// with a warning; a missing or unopenable file is fatal.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a Reader. A nil logger falls back to slog.Default().
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// Load reads every sheet of the workbook at path. The first row of each
// sheet is the header; remaining rows are data. Entirely empty sheets
// come back with no columns.
func (r *Reader) Load(path string) (*source.Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("workbook %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			r.logger.Warn("close workbook", slog.String("path", path), slog.String("error", cerr.Error()))
		}
	}()

	wb := &source.Workbook{Path: path}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			r.logger.Warn("skipping unreadable sheet",
				slog.String("workbook", path),
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			continue
		}
		if len(rows) == 0 {
			wb.Sheets = append(wb.Sheets, source.NewSheet(name, nil, nil))
			continue
		}
		wb.Sheets = append(wb.Sheets, source.NewSheet(name, rows[0], rows[1:]))
	}
	return wb, nil
}

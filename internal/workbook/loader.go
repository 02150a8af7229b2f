// Package workbook reads uploaded spreadsheet files into raw string
// tables for the normalization pipeline.
package workbook

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet as raw cell text, header row included.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is the parsed upload, sheets in original file order.
type Workbook struct {
	Filename string
	Sheets   []Sheet
}

// SheetNames returns the sheet names in file order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.Sheets))
	for _, s := range w.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Loader opens .xlsx workbooks.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a workbook loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads every sheet of the workbook at path. Cell values come back
// as formatted strings; empty sheets are kept so positional role
// assignment still sees them.
func (l *Loader) Load(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{Filename: path}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			l.logger.Warn("failed to read sheet, skipping",
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			continue
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: stripBOM(rows)})
	}

	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no readable sheets", path)
	}

	l.logger.Info("workbook loaded",
		slog.String("path", path),
		slog.Int("sheets", len(wb.Sheets)))
	return wb, nil
}

// stripBOM removes a UTF-8 byte order mark from the first cell, which
// survives in files exported from some spreadsheet tools.
func stripBOM(rows [][]string) [][]string {
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return rows
}

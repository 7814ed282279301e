// Package source defines the workbook value objects the extractors consume
// and the Source interface that supplies them.
package source

import "strings"

// Sheet is one rectangular sheet: a header row of column names and data
// rows aligned to it. Column names are whitespace-trimmed on construction.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewSheet builds a Sheet from a raw header row and data rows. Header
// cells are trimmed; duplicate column names keep the first position, and
// unnamed columns are not addressable by Value or HasColumn.
func NewSheet(name string, header []string, rows [][]string) *Sheet {
	s := &Sheet{
		Name:  name,
		Rows:  rows,
		index: make(map[string]int, len(header)),
	}
	for i, col := range header {
		col = strings.TrimSpace(col)
		s.Columns = append(s.Columns, col)
		if col == "" {
			continue
		}
		if _, ok := s.index[col]; !ok {
			s.index[col] = i
		}
	}
	return s
}

// Empty reports whether the sheet has no columns or no rows.
func (s *Sheet) Empty() bool {
	return len(s.Columns) == 0 || len(s.Rows) == 0
}

// HasColumn reports whether a column with the given (trimmed) name exists.
func (s *Sheet) HasColumn(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Value returns the cell at the given row for the named column. Missing
// columns and short rows yield the empty string.
func (s *Sheet) Value(row int, column string) string {
	idx, ok := s.index[column]
	if !ok || row < 0 || row >= len(s.Rows) {
		return ""
	}
	cells := s.Rows[row]
	if idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// Workbook is one source file: a path plus its sheets in file order.
type Workbook struct {
	Path   string
	Sheets []*Sheet
}

// Sheet returns the sheet with the given name, or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Source supplies decoded workbooks. Implementations own all file-format
// concerns; cell values arrive as plain strings.
type Source interface {
	// Load reads the workbook at path. A missing file is an error; an
	// unreadable individual sheet is skipped, not fatal.
	Load(path string) (*Workbook, error)
}

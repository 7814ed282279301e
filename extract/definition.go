package extract

import (
	"log/slog"
	"strings"

	"github.com/strataguard/riskdata/config"
	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/source"
)

// DefinitionExtractor reads terminology definitions from the first sheet
// of the definitions workbook. Definition IDs are slugs derived from the
// term and carry no entity prefix.
type DefinitionExtractor struct {
	spec   config.SourceSpec
	dedupe bool
	logger *slog.Logger
}

// NewDefinitionExtractor returns an extractor bound to the given source spec.
func NewDefinitionExtractor(spec config.SourceSpec, dedupe bool, logger *slog.Logger) *DefinitionExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefinitionExtractor{spec: spec, dedupe: dedupe, logger: logger}
}

// Extract returns the definitions found in the workbook. Rows without a
// term are skipped. Empty category and source fields receive the defaults
// "Uncategorized" and "Unknown".
func (e *DefinitionExtractor) Extract(wb *source.Workbook) ([]model.Definition, error) {
	if len(wb.Sheets) == 0 {
		e.logger.Warn("definitions workbook has no sheets", "path", wb.Path)
		return nil, nil
	}
	sheet := wb.Sheets[0]
	if sheet.Empty() {
		e.logger.Warn("definitions sheet is empty", "sheet", sheet.Name)
		return nil, nil
	}

	termCol := e.column(sheet, "id", "Term")
	titleCol := e.column(sheet, "title", "Term")
	descCol := e.column(sheet, "description", "Definition")
	catCol := e.column(sheet, "category", "Category")
	srcCol := e.column(sheet, "source", "Source")

	var defs []model.Definition
	for i := range sheet.Rows {
		term := cleanValue(sheet.Value(i, termCol))
		if term == "" {
			e.logger.Warn("skipping definition row with missing term", "sheet", sheet.Name, "row", i+2)
			continue
		}
		def := model.Definition{
			ID:          slugID(term),
			Term:        term,
			Title:       cleanValue(sheet.Value(i, titleCol)),
			Description: cleanValue(sheet.Value(i, descCol)),
			Category:    cleanValue(sheet.Value(i, catCol)),
			Source:      cleanValue(sheet.Value(i, srcCol)),
		}
		if def.Title == "" {
			def.Title = term
		}
		if def.Category == "" {
			def.Category = "Uncategorized"
		}
		if def.Source == "" {
			def.Source = "Unknown"
		}
		defs = append(defs, def)
	}

	if e.dedupe {
		var removed int
		defs, removed = dedupeByID(defs, func(d model.Definition) string { return d.ID })
		if removed > 0 {
			e.logger.Info("removed duplicate definitions", "count", removed)
		}
	}

	e.logger.Info("extracted definitions", "count", len(defs), "sheet", sheet.Name)
	return defs, nil
}

// column resolves a canonical field to a sheet column, preferring the
// explicit config binding over the built-in default.
func (e *DefinitionExtractor) column(sheet *source.Sheet, field, fallback string) string {
	if col, ok := e.spec.Columns[field]; ok && sheet.HasColumn(col) {
		return col
	}
	return fallback
}

// slugID turns a term into a stable identifier: lowercase, non-alphanumeric
// runs become single underscores, with no leading or trailing underscore.
func slugID(term string) string {
	var parts []string
	var cur strings.Builder
	for _, r := range strings.ToLower(term) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			cur.WriteRune(r)
			continue
		}
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return strings.Join(parts, "_")
}

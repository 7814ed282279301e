package extract

import (
	"log/slog"
	"strings"

	"github.com/strataguard/riskdata/config"
	"github.com/strataguard/riskdata/detect"
	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/source"
)

// ControlExtractor reads control records from every sheet of the control
// framework workbook. Sheets use one of two known layouts (Code/Purpose or
// Sub-Control/Control Title), with a keyword fallback for anything else.
type ControlExtractor struct {
	spec     config.SourceSpec
	detector *detect.Detector
	dedupe   bool
	logger   *slog.Logger
}

// NewControlExtractor returns an extractor bound to the given source spec.
func NewControlExtractor(spec config.SourceSpec, dedupe bool, logger *slog.Logger) *ControlExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlExtractor{
		spec:     spec,
		detector: detect.NewDetector(),
		dedupe:   dedupe,
		logger:   logger,
	}
}

// Extract returns the controls found across all sheets. A workbook where
// no sheet carries a "Risks" or "Mapped Risks" column yields an empty
// slice with a warning; individual sheets missing the column are skipped.
func (e *ControlExtractor) Extract(wb *source.Workbook) ([]model.Control, error) {
	if !hasRisksColumn(wb) {
		e.logger.Warn("no sheet in control workbook has a Risks or Mapped Risks column", "path", wb.Path)
		return nil, nil
	}

	var controls []model.Control
	for _, sheet := range wb.Sheets {
		if sheet.Empty() {
			e.logger.Warn("control sheet is empty, skipping", "sheet", sheet.Name)
			continue
		}
		risksCol := risksColumn(sheet)
		if risksCol == "" {
			e.logger.Warn("control sheet missing Risks or Mapped Risks column, skipping", "sheet", sheet.Name)
			continue
		}
		fields := e.controlLayout(sheet)
		idCol, hasID := fields["id"]
		titleCol, hasTitle := fields["title"]
		if !hasID || !hasTitle {
			e.logger.Warn("control sheet has no recognizable ID or title column, skipping", "sheet", sheet.Name)
			continue
		}
		descCol := fields["description"]

		count := 0
		for i := range sheet.Rows {
			rawID := cleanValue(sheet.Value(i, idCol))
			title := cleanValue(sheet.Value(i, titleCol))
			if rawID == "" || title == "" {
				e.logger.Warn("skipping control row with missing ID or title", "sheet", sheet.Name, "row", i+2)
				continue
			}
			ctl := model.Control{
				ID:               model.ControlIDPrefix + rawID,
				Title:            title,
				MappedRisks:      cleanValue(sheet.Value(i, risksCol)),
				AssetType:        cleanValue(sheet.Value(i, "Asset Type")),
				ControlType:      cleanValue(sheet.Value(i, "Control Type")),
				SecurityFunction: cleanValue(sheet.Value(i, "Security Function")),
				MaturityLevel:    cleanValue(sheet.Value(i, "Maturity")),
			}
			if descCol != "" {
				ctl.Description = cleanValue(sheet.Value(i, descCol))
			}
			controls = append(controls, ctl)
			count++
		}
		e.logger.Info("extracted controls from sheet", "sheet", sheet.Name, "count", count)
	}

	if e.dedupe {
		var removed int
		controls, removed = dedupeByID(controls, func(c model.Control) string { return c.ID })
		if removed > 0 {
			e.logger.Info("removed duplicate controls", "count", removed)
		}
	}

	e.logger.Info("extracted controls", "count", len(controls))
	return controls, nil
}

// controlLayout resolves the sheet's column bindings once, so row access
// goes through a single field mapping. Domain summary sheets bind
// Code/Purpose, per-domain sheets bind Sub-Control/Control Title, and
// anything else falls back to explicit config plus keyword matching.
func (e *ControlExtractor) controlLayout(sheet *source.Sheet) detect.FieldMapping {
	switch {
	case sheet.HasColumn("Code") && sheet.HasColumn("Purpose"):
		return detect.FieldMapping{"id": "Code", "title": "Purpose", "description": "Purpose"}
	case sheet.HasColumn("Sub-Control"):
		return detect.FieldMapping{"id": "Sub-Control", "title": "Control Title", "description": "Control Description"}
	case sheet.HasColumn("Sub-Control ID"):
		return detect.FieldMapping{"id": "Sub-Control ID", "title": "Control Title", "description": "Control Description"}
	}

	fields := resolveFields(sheet, model.EntityTypeControl, e.spec.Columns, e.detector, e.logger)
	if _, ok := fields["id"]; !ok {
		if col := columnContaining(sheet, "id", "code", "control"); col != "" {
			fields["id"] = col
		}
	}
	if _, ok := fields["title"]; !ok {
		if col := columnContaining(sheet, "title", "purpose", "name"); col != "" {
			fields["title"] = col
			if _, ok := fields["description"]; !ok {
				fields["description"] = col
			}
		}
	}
	return fields
}

// columnContaining returns the first column whose name contains any of
// the given keywords, case-insensitively.
func columnContaining(sheet *source.Sheet, keywords ...string) string {
	for _, col := range sheet.Columns {
		lower := strings.ToLower(col)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return col
			}
		}
	}
	return ""
}

func risksColumn(sheet *source.Sheet) string {
	switch {
	case sheet.HasColumn("Risks"):
		return "Risks"
	case sheet.HasColumn("Mapped Risks"):
		return "Mapped Risks"
	}
	return ""
}

func hasRisksColumn(wb *source.Workbook) bool {
	for _, sheet := range wb.Sheets {
		if risksColumn(sheet) != "" {
			return true
		}
	}
	return false
}

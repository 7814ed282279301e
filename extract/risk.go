package extract

import (
	"fmt"
	"log/slog"

	"github.com/strataguard/riskdata/config"
	"github.com/strataguard/riskdata/detect"
	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/source"
)

// RiskExtractor reads risk records from the first sheet of the risk
// taxonomy workbook. IDs are stored as found in the sheet, prefix aside;
// canonicalization is a mapping-reference concern, not an extraction one.
type RiskExtractor struct {
	spec     config.SourceSpec
	detector *detect.Detector
	dedupe   bool
	logger   *slog.Logger
}

// NewRiskExtractor returns an extractor bound to the given source spec.
func NewRiskExtractor(spec config.SourceSpec, dedupe bool, logger *slog.Logger) *RiskExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RiskExtractor{
		spec:     spec,
		detector: detect.NewDetector(),
		dedupe:   dedupe,
		logger:   logger,
	}
}

// Extract returns the risks found in the workbook. An empty workbook
// yields an empty slice; a workbook whose ID or title column cannot be
// located is an error.
func (e *RiskExtractor) Extract(wb *source.Workbook) ([]model.Risk, error) {
	if len(wb.Sheets) == 0 {
		e.logger.Warn("risk workbook has no sheets", "path", wb.Path)
		return nil, nil
	}
	sheet := wb.Sheets[0]
	if sheet.Empty() {
		e.logger.Warn("risk sheet is empty", "sheet", sheet.Name)
		return nil, nil
	}

	fields := resolveFields(sheet, model.EntityTypeRisk, e.spec.Columns, e.detector, e.logger)
	idCol, ok := fields["id"]
	if !ok {
		return nil, fmt.Errorf("risk sheet %q: no ID column found in %v", sheet.Name, sheet.Columns)
	}
	titleCol, ok := fields["title"]
	if !ok {
		return nil, fmt.Errorf("risk sheet %q: no title column found in %v", sheet.Name, sheet.Columns)
	}
	descCol := fields["description"]

	var risks []model.Risk
	for i := range sheet.Rows {
		rawID := cleanValue(sheet.Value(i, idCol))
		title := cleanValue(sheet.Value(i, titleCol))
		if rawID == "" || title == "" {
			e.logger.Warn("skipping risk row with missing ID or title", "sheet", sheet.Name, "row", i+2)
			continue
		}
		risk := model.Risk{
			ID:    model.RiskIDPrefix + rawID,
			Title: title,
		}
		if descCol != "" {
			risk.Description = cleanValue(sheet.Value(i, descCol))
		}
		risks = append(risks, risk)
	}

	if e.dedupe {
		var removed int
		risks, removed = dedupeByID(risks, func(r model.Risk) string { return r.ID })
		if removed > 0 {
			e.logger.Info("removed duplicate risks", "count", removed)
		}
	}

	e.logger.Info("extracted risks", "count", len(risks), "sheet", sheet.Name)
	return risks, nil
}

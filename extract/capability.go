package extract

import (
	"fmt"
	"log/slog"

	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/source"
)

// Sheet names in the security capabilities workbook.
const (
	technicalSheet    = "Technical Capabilities"
	nonTechnicalSheet = "Non-Technical Capabilities"
)

// CapabilityExtractor reads security capabilities from the two fixed
// sheets of the capabilities workbook. Capability IDs are ordinal,
// derived from the row position within the sheet, so skipped rows still
// consume their ordinal.
type CapabilityExtractor struct {
	dedupe bool
	logger *slog.Logger
}

// NewCapabilityExtractor returns a capability extractor.
func NewCapabilityExtractor(dedupe bool, logger *slog.Logger) *CapabilityExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CapabilityExtractor{dedupe: dedupe, logger: logger}
}

// Extract returns the capabilities from both sheets. Either sheet being
// absent is an error.
func (e *CapabilityExtractor) Extract(wb *source.Workbook) ([]model.Capability, error) {
	tech := wb.Sheet(technicalSheet)
	if tech == nil {
		return nil, fmt.Errorf("capability workbook %s: missing sheet %q", wb.Path, technicalSheet)
	}
	nonTech := wb.Sheet(nonTechnicalSheet)
	if nonTech == nil {
		return nil, fmt.Errorf("capability workbook %s: missing sheet %q", wb.Path, nonTechnicalSheet)
	}

	caps := e.extractTechnical(tech)
	caps = append(caps, e.extractNonTechnical(nonTech)...)

	if e.dedupe {
		var removed int
		caps, removed = dedupeByID(caps, func(c model.Capability) string { return c.ID })
		if removed > 0 {
			e.logger.Info("removed duplicate capabilities", "count", removed)
		}
	}

	e.logger.Info("extracted capabilities", "count", len(caps))
	return caps, nil
}

func (e *CapabilityExtractor) extractTechnical(sheet *source.Sheet) []model.Capability {
	nameCol := findColumn(sheet, "Technical Capability", "Capability")
	domainCol := findColumn(sheet, "Capability Domain", "Domain")
	defCol := findColumn(sheet, "Capability Definition", "Definition")
	controlsCol := findColumn(sheet, "Controls", "Control IDs")
	productsCol := findColumn(sheet, "Candidate Products (modern, AI-defense)", "Products", "Candidate Products")
	notesCol := findColumn(sheet, "Notes", "Note")

	var caps []model.Capability
	for i := range sheet.Rows {
		name := cleanValue(sheet.Value(i, nameCol))
		if name == "" {
			e.logger.Warn("skipping technical capability row with missing name", "sheet", sheet.Name, "row", i+2)
			continue
		}
		caps = append(caps, model.Capability{
			ID:                fmt.Sprintf("CAP.TECH.%03d", i+1),
			Name:              name,
			Type:              model.CapabilityTechnical,
			Domain:            cleanValue(sheet.Value(i, domainCol)),
			Definition:        cleanValue(sheet.Value(i, defCol)),
			Controls:          cleanValue(sheet.Value(i, controlsCol)),
			CandidateProducts: cleanValue(sheet.Value(i, productsCol)),
			Notes:             cleanValue(sheet.Value(i, notesCol)),
		})
	}
	return caps
}

func (e *CapabilityExtractor) extractNonTechnical(sheet *source.Sheet) []model.Capability {
	nameCol := findColumn(sheet, "Capability", "Non-Technical Capability")
	defCol := findColumn(sheet, "Capability Definition", "Definition")
	controlsCol := findColumn(sheet, "Controls", "Control IDs", "Control Mappings")
	notesCol := findColumn(sheet, "Notes", "Note")

	var caps []model.Capability
	for i := range sheet.Rows {
		name := cleanValue(sheet.Value(i, nameCol))
		if name == "" {
			e.logger.Warn("skipping non-technical capability row with missing name", "sheet", sheet.Name, "row", i+2)
			continue
		}
		caps = append(caps, model.Capability{
			ID:         fmt.Sprintf("CAP.NONTECH.%03d", i+1),
			Name:       name,
			Type:       model.CapabilityNonTechnical,
			Definition: cleanValue(sheet.Value(i, defCol)),
			Controls:   cleanValue(sheet.Value(i, controlsCol)),
			Notes:      cleanValue(sheet.Value(i, notesCol)),
		})
	}
	return caps
}

// findColumn returns the first of the candidate column names present in
// the sheet, or "" when none are.
func findColumn(sheet *source.Sheet, candidates ...string) string {
	for _, name := range candidates {
		if sheet.HasColumn(name) {
			return name
		}
	}
	return ""
}

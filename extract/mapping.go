package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/strataguard/riskdata/config"
	"github.com/strataguard/riskdata/detect"
	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/normalize"
	"github.com/strataguard/riskdata/source"
)

// bareControlCode matches an unprefixed control code in a capability's
// control list, e.g. AIIM.1.
var bareControlCode = regexp.MustCompile(`^[A-Z]{2,6}\.\d+$`)

// MappingExtractor builds the relationship tables between risks, controls,
// questions, and capabilities. References are normalized to the same
// canonical form the entity extractors produce, and every mapping is
// checked against the extracted entities: unresolvable references are
// dropped with a warning rather than stored as orphans.
type MappingExtractor struct {
	spec       config.SourceSpec
	detector   *detect.Detector
	normalizer *normalize.Normalizer
	acronyms   *normalize.AcronymTable
	logger     *slog.Logger
}

// NewMappingExtractor returns a mapping extractor. The source spec is the
// questions source, whose risk_mapping and control_mapping columns carry
// the question-level references.
func NewMappingExtractor(spec config.SourceSpec, normalizer *normalize.Normalizer, acronyms *normalize.AcronymTable, logger *slog.Logger) *MappingExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MappingExtractor{
		spec:       spec,
		detector:   detect.NewDetector(),
		normalizer: normalizer,
		acronyms:   acronyms,
		logger:     logger,
	}
}

// ExtractQuestionMappings reads question-to-risk and question-to-control
// references from every sheet of the questions workbook. The question ID
// is re-derived exactly as the question extractor derives it, so mappings
// line up with extracted questions. TBD placeholders are filtered, and
// when entity sets are provided, references to unknown entities are
// dropped with a warning.
func (e *MappingExtractor) ExtractQuestionMappings(wb *source.Workbook, risks []model.Risk, controls []model.Control) ([]model.QuestionRiskMapping, []model.QuestionControlMapping) {
	riskIDs := riskIDSet(risks)
	controlIDs := controlIDSet(controls)

	var riskMaps []model.QuestionRiskMapping
	var controlMaps []model.QuestionControlMapping

	for _, sheet := range wb.Sheets {
		if sheet.Empty() {
			e.logger.Warn("question sheet is empty, skipping mappings", "sheet", sheet.Name)
			continue
		}
		fields := resolveFields(sheet, model.EntityTypeQuestion, e.spec.Columns, e.detector, e.logger)
		idCol := fields["id"]
		riskCol := fields["risk_mapping"]
		controlCol := fields["control_mapping"]
		if idCol == "" || (riskCol == "" && controlCol == "") {
			continue
		}

		acronym := e.acronyms.ForID(sheet.Name)
		for i := range sheet.Rows {
			rawQuestionID := cleanValue(sheet.Value(i, idCol))
			if rawQuestionID == "" {
				continue
			}
			questionID := model.QuestionIDPrefix + acronym + "." + rawQuestionID

			if rawRisk := cleanValue(sheet.Value(i, riskCol)); rawRisk != "" {
				if norm, ok := e.normalizer.RiskID(rawRisk); ok {
					riskID := model.RiskIDPrefix + norm
					switch {
					case riskID == "R.TBD":
						// placeholder, not a reference
					case riskIDs != nil && !riskIDs[riskID]:
						e.logger.Warn("risk not found for question mapping", "risk_id", riskID, "question_id", questionID)
					default:
						riskMaps = append(riskMaps, model.QuestionRiskMapping{QuestionID: questionID, RiskID: riskID})
					}
				}
			}

			if rawControl := cleanValue(sheet.Value(i, controlCol)); rawControl != "" {
				if norm, ok := e.normalizer.ControlID(rawControl); ok {
					controlID := model.ControlIDPrefix + norm
					switch {
					case controlID == "C.TBD":
						// placeholder, not a reference
					case controlIDs != nil && !controlIDs[controlID]:
						e.logger.Warn("control not found for question mapping", "control_id", controlID, "question_id", questionID)
					default:
						controlMaps = append(controlMaps, model.QuestionControlMapping{QuestionID: questionID, ControlID: controlID})
					}
				}
			}
		}
	}

	riskMaps, _ = dedupeByID(riskMaps, func(m model.QuestionRiskMapping) string {
		return m.QuestionID + "\x00" + m.RiskID
	})
	controlMaps, _ = dedupeByID(controlMaps, func(m model.QuestionControlMapping) string {
		return m.QuestionID + "\x00" + m.ControlID
	})

	e.logger.Info("extracted question mappings",
		"risk_mappings", len(riskMaps),
		"control_mappings", len(controlMaps))
	return riskMaps, controlMaps
}

// CreateRiskControlMappings expands each control's comma-separated
// MappedRisks field into risk-control pairs. Short references (AIR.1) and
// padded references (AIR.001) resolve to the same risk, so the output is
// deduplicated by pair. References to risks that were not extracted are
// dropped with a warning.
func (e *MappingExtractor) CreateRiskControlMappings(risks []model.Risk, controls []model.Control) []model.RiskControlMapping {
	if len(controls) == 0 {
		e.logger.Info("no controls available for risk-control mapping")
		return nil
	}
	riskIDs := riskIDSet(risks)

	var mappings []model.RiskControlMapping
	for _, ctl := range controls {
		if ctl.MappedRisks == "" {
			continue
		}
		for _, token := range splitList(ctl.MappedRisks) {
			riskID := model.RiskIDPrefix + padMappedRisk(token)
			if riskIDs != nil && !riskIDs[riskID] {
				e.logger.Warn("risk not found for control mapping", "risk_id", riskID, "control_id", ctl.ID)
				continue
			}
			mappings = append(mappings, model.RiskControlMapping{RiskID: riskID, ControlID: ctl.ID})
		}
	}

	mappings, _ = dedupeByID(mappings, func(m model.RiskControlMapping) string {
		return m.RiskID + "\x00" + m.ControlID
	})

	e.logger.Info("created risk-control mappings", "count", len(mappings))
	return mappings
}

// CreateCapabilityControlMappings expands each capability's Controls field
// into capability-control pairs, deduplicated by pair. Bare control codes
// (AIIM.1) gain the C. prefix; references to controls that were not
// extracted are dropped with a warning.
func (e *MappingExtractor) CreateCapabilityControlMappings(capabilities []model.Capability, controls []model.Control) []model.CapabilityControlMapping {
	if len(capabilities) == 0 {
		return nil
	}
	controlIDs := controlIDSet(controls)

	var mappings []model.CapabilityControlMapping
	for _, c := range capabilities {
		if c.Controls == "" {
			continue
		}
		for _, token := range splitList(c.Controls) {
			controlID := token
			if bareControlCode.MatchString(token) {
				controlID = model.ControlIDPrefix + token
			}
			if controlIDs != nil && !controlIDs[controlID] {
				e.logger.Warn("control not found for capability mapping", "control_id", controlID, "capability_id", c.ID)
				continue
			}
			mappings = append(mappings, model.CapabilityControlMapping{CapabilityID: c.ID, ControlID: controlID})
		}
	}

	mappings, _ = dedupeByID(mappings, func(m model.CapabilityControlMapping) string {
		return m.CapabilityID + "\x00" + m.ControlID
	})

	e.logger.Info("created capability-control mappings", "count", len(mappings))
	return mappings
}

// padMappedRisk canonicalizes a mapped-risk token. A token whose numeric
// part already has three digits passes through; a shorter numeric part is
// zero-padded; a non-numeric part passes through unchanged.
func padMappedRisk(token string) string {
	prefix, num, ok := strings.Cut(token, ".")
	if !ok {
		return token
	}
	if len(num) == 3 {
		return token
	}
	v, err := strconv.Atoi(num)
	if err != nil {
		return token
	}
	return fmt.Sprintf("%s.%03d", prefix, v)
}

func riskIDSet(risks []model.Risk) map[string]bool {
	if len(risks) == 0 {
		return nil
	}
	set := make(map[string]bool, len(risks))
	for _, r := range risks {
		set[r.ID] = true
	}
	return set
}

func controlIDSet(controls []model.Control) map[string]bool {
	if len(controls) == 0 {
		return nil
	}
	set := make(map[string]bool, len(controls))
	for _, c := range controls {
		set[c.ID] = true
	}
	return set
}

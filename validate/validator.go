// Package validate checks extracted tables against per-entity quality
// rules and cross-entity consistency.
package validate

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/strataguard/riskdata/model"
)

// rules holds the quality thresholds for one entity type. The first
// required field is the ID, the second the title/text field.
type rules struct {
	requiredFields []string
	idPattern      *regexp.Regexp
	minTitleLen    int
	maxTitleLen    int
}

var entityRules = map[model.EntityType]rules{
	model.EntityTypeRisk: {
		requiredFields: []string{"risk_id", "risk_title"},
		idPattern:      regexp.MustCompile(`^AIR\.\d{3}$`),
		minTitleLen:    5,
		maxTitleLen:    255,
	},
	model.EntityTypeControl: {
		requiredFields: []string{"control_id", "control_title"},
		idPattern:      regexp.MustCompile(`^AI[A-Z]{2,4}\.\d+$`),
		minTitleLen:    5,
		maxTitleLen:    255,
	},
	model.EntityTypeQuestion: {
		requiredFields: []string{"question_id", "question_text"},
		idPattern:      regexp.MustCompile(`^[A-Z]{2,6}\d+\.\d+$|^Q\d+$`),
		minTitleLen:    10,
		maxTitleLen:    1000,
	},
}

// EntityReport is the outcome of validating one entity table.
type EntityReport struct {
	EntityType     model.EntityType
	TotalRecords   int
	ValidRecords   int
	InvalidRecords int
	Errors         []string
	Warnings       []string
	Passed         bool
}

// Validator applies entity and consistency rules to extracted tables.
type Validator struct {
	logger *slog.Logger
}

// NewValidator returns a validator.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// ValidateEntityTable checks one entity table against its rules: the ID
// and title fields must be present and non-empty, IDs must match the
// canonical pattern for the type, and titles must fall inside the length
// bounds. ID patterns are checked on the bare ID, after the entity prefix.
// Duplicate IDs are reported as a warning, not an error.
func (v *Validator) ValidateEntityTable(table model.Table, entityType model.EntityType) (*EntityReport, error) {
	r, ok := entityRules[entityType]
	if !ok {
		return nil, fmt.Errorf("unknown entity type: %s", entityType)
	}

	report := &EntityReport{
		EntityType:   entityType,
		TotalRecords: len(table.Rows),
		Passed:       true,
	}

	if table.Empty() {
		report.Errors = append(report.Errors, "no data found")
		report.Passed = false
		return report, nil
	}

	var missing []string
	for _, field := range r.requiredFields {
		if table.ColumnIndex(field) < 0 {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("missing required fields: %v", missing))
		report.Passed = false
		return report, nil
	}

	idIdx := table.ColumnIndex(r.requiredFields[0])
	titleIdx := table.ColumnIndex(r.requiredFields[1])

	for i, row := range table.Rows {
		errs := v.validateRow(row, idIdx, titleIdx, r, entityType)
		if len(errs) > 0 {
			report.InvalidRecords++
			for _, e := range errs {
				report.Errors = append(report.Errors, fmt.Sprintf("row %d: %s", i, e))
			}
		} else {
			report.ValidRecords++
		}
	}

	if dups := duplicateCount(table.Column(r.requiredFields[0])); dups > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("found %d duplicate records", dups))
	}

	if report.InvalidRecords > 0 {
		report.Passed = false
	}

	v.logger.Info("validated entity table",
		"entity_type", string(entityType),
		"total", report.TotalRecords,
		"valid", report.ValidRecords,
		"invalid", report.InvalidRecords)
	return report, nil
}

func (v *Validator) validateRow(row []any, idIdx, titleIdx int, r rules, entityType model.EntityType) []string {
	var errs []string

	id := stringAt(row, idIdx)
	title := stringAt(row, titleIdx)

	if strings.TrimSpace(id) == "" {
		errs = append(errs, "empty required field: "+r.requiredFields[0])
	}
	if strings.TrimSpace(title) == "" {
		errs = append(errs, "empty required field: "+r.requiredFields[1])
	}

	if id != "" {
		if !r.idPattern.MatchString(bareID(id, entityType)) {
			errs = append(errs, "invalid ID format: "+id)
		}
	}

	if title != "" {
		n := len(strings.TrimSpace(title))
		if n < r.minTitleLen {
			errs = append(errs, fmt.Sprintf("title too short: %d < %d", n, r.minTitleLen))
		}
		if n > r.maxTitleLen {
			errs = append(errs, fmt.Sprintf("title too long: %d > %d", n, r.maxTitleLen))
		}
	}

	return errs
}

// bareID strips the entity prefix from a stored ID so the format pattern
// applies to the canonical form. Question IDs also carry a service acronym
// segment between the prefix and the canonical ID.
func bareID(id string, entityType model.EntityType) string {
	switch entityType {
	case model.EntityTypeRisk:
		return strings.TrimPrefix(id, model.RiskIDPrefix)
	case model.EntityTypeControl:
		return strings.TrimPrefix(id, model.ControlIDPrefix)
	case model.EntityTypeQuestion:
		rest := strings.TrimPrefix(id, model.QuestionIDPrefix)
		if _, after, ok := strings.Cut(rest, "."); ok {
			return after
		}
		return rest
	}
	return id
}

func stringAt(row []any, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	s, _ := row[idx].(string)
	return s
}

// duplicateCount returns the number of rows involved in a duplicate ID,
// counting every occurrence of a repeated value.
func duplicateCount(ids []string) int {
	counts := make(map[string]int, len(ids))
	for _, id := range ids {
		counts[id]++
	}
	total := 0
	for _, c := range counts {
		if c > 1 {
			total += c
		}
	}
	return total
}

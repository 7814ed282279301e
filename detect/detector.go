// Package detect maps arbitrary spreadsheet columns to canonical semantic
// fields using ordered regex patterns per entity type. Detection is a pure
// function of the sheet headers.
package detect

import (
	"regexp"
	"strings"

	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/source"
)

// FieldMapping maps canonical field names to the actual column names
// detected in one sheet. Resolved once per sheet scan; extraction loops
// access rows through it by canonical key only.
type FieldMapping map[string]string

// fieldPattern is one canonical field with its ordered candidate patterns.
type fieldPattern struct {
	field    string
	patterns []*regexp.Regexp
}

var fieldPatterns = map[model.EntityType][]fieldPattern{
	model.EntityTypeRisk: {
		{"id", compile(`^id$`, `^risk.?id$`, `^air\.?\d*$`)},
		{"title", compile(`^title$`, `^risk$`, `^risk.?title$`, `^name$`)},
		{"description", compile(`^description$`, `^risk.?description$`, `^details$`, `^summary$`)},
		{"category", compile(`^category$`, `^mit.*risk.*category$`, `^mit.*ai.*risk.*category$`, `^type$`, `^class$`)},
		{"subdomain", compile(`^subdomain$`, `^mit.*risk.*subdomain$`, `^mit.*ai.*risk.*subdomain$`, `^sub.?category$`)},
		{"tactic", compile(`^tactic$`, `^mitre.*atlas.*tactic$`, `^attack.?tactic$`)},
		{"technique", compile(`^technique$`, `^mitre.*atlas.*technique$`, `^attack.?technique$`)},
		{"likelihood", compile(`^likelihood$`, `^possible.*plausible$`, `^possible.*vs.*plausible$`, `^risk.?level$`, `^probability$`)},
	},
	model.EntityTypeControl: {
		{"id", compile(`^id$`, `^control.?id$`, `^sub.?control$`, `^control.?number$`, `^code$`, `^#`)},
		{"title", compile(`^title$`, `^control.?title$`, `^name$`, `^control.?name$`, `^purpose$`)},
		{"description", compile(`^description$`, `^control.?description$`, `^details$`, `^summary$`, `^purpose$`)},
		{"domain", compile(`^domain$`, `^control.?domain$`, `^category$`, `^type$`)},
		{"mapped_risks", compile(`^mapped.?risks$`, `^risk.?mapping$`, `^related.?risks$`)},
		{"asset_type", compile(`^asset.?type$`, `^asset$`, `^resource.?type$`)},
		{"control_type", compile(`^control.?type$`, `^type$`, `^category$`, `^class$`)},
		{"security_function", compile(`^security.?function$`, `^function$`, `^purpose$`)},
		{"maturity", compile(`^maturity$`, `^maturity.?level$`, `^level$`, `^stage$`)},
	},
	model.EntityTypeQuestion: {
		{"id", compile(`^id$`, `^question.?id$`, `^question.?number$`, `^q\d*$`)},
		{"text", compile(`^text$`, `^question.?text$`, `^question$`, `^content$`)},
		{"category", compile(`^category$`, `^type$`, `^class$`, `^domain$`)},
		{"topic", compile(`^topic$`, `^subject$`, `^theme$`, `^area$`)},
		{"risk_mapping", compile(`^risk.?mapping$`, `^aiml.*risk.*taxonomy$`, `^aiml_risk_taxonomy$`, `^related.?risks$`)},
		{"control_mapping", compile(`^control.?mapping$`, `^aiml.*control$`, `^aiml_control$`, `^related.?controls$`)},
	},
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

var (
	separators = regexp.MustCompile(`[_\-.,;:]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Detector detects canonical fields in sheet headers.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFields maps each canonical field of entityType to the first column
// whose cleaned name matches any of the field's patterns. Fields with no
// matching column are absent from the result.
func (d *Detector) DetectFields(sheet *source.Sheet, entityType model.EntityType) FieldMapping {
	specs, ok := fieldPatterns[entityType]
	if !ok {
		return FieldMapping{}
	}

	cleaned := make([]string, len(sheet.Columns))
	for i, col := range sheet.Columns {
		cleaned[i] = CleanColumnName(col)
	}

	mapping := FieldMapping{}
	for _, spec := range specs {
		if col, ok := matchColumn(cleaned, sheet.Columns, spec.patterns); ok {
			mapping[spec.field] = col
		}
	}
	return mapping
}

// SuggestFieldMappings returns every matching column per requested field,
// for diagnostics rather than extraction.
func (d *Detector) SuggestFieldMappings(sheet *source.Sheet, entityType model.EntityType, fields []string) map[string][]string {
	specs := specsByField(entityType)
	cleaned := make([]string, len(sheet.Columns))
	for i, col := range sheet.Columns {
		cleaned[i] = CleanColumnName(col)
	}

	suggestions := make(map[string][]string)
	for _, field := range fields {
		patterns, ok := specs[field]
		if !ok {
			continue
		}
		var matches []string
		for i, clean := range cleaned {
			for _, re := range patterns {
				if re.MatchString(clean) {
					matches = append(matches, sheet.Columns[i])
					break
				}
			}
		}
		suggestions[field] = matches
	}
	return suggestions
}

// ValidateRequiredFields reports whether every required canonical field was
// detected, and which are missing.
func (d *Detector) ValidateRequiredFields(sheet *source.Sheet, entityType model.EntityType, required []string) (bool, []string) {
	detected := d.DetectFields(sheet, entityType)
	var missing []string
	for _, field := range required {
		if _, ok := detected[field]; !ok {
			missing = append(missing, field)
		}
	}
	return len(missing) == 0, missing
}

// FieldStats holds completeness figures for one detected field.
type FieldStats struct {
	ColumnName   string
	NonEmpty     int
	Total        int
	Completeness float64
}

// FieldStatistics computes per-field completeness (non-empty / total) for
// every detected field of entityType.
func (d *Detector) FieldStatistics(sheet *source.Sheet, entityType model.EntityType) map[string]FieldStats {
	detected := d.DetectFields(sheet, entityType)
	stats := make(map[string]FieldStats, len(detected))
	total := len(sheet.Rows)
	for field, col := range detected {
		nonEmpty := 0
		for i := range sheet.Rows {
			if strings.TrimSpace(sheet.Value(i, col)) != "" {
				nonEmpty++
			}
		}
		s := FieldStats{ColumnName: col, NonEmpty: nonEmpty, Total: total}
		if total > 0 {
			s.Completeness = float64(nonEmpty) / float64(total)
		}
		stats[field] = s
	}
	return stats
}

// CleanColumnName prepares a column name for pattern matching: lowercase,
// separators folded to spaces, whitespace collapsed.
func CleanColumnName(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = separators.ReplaceAllString(cleaned, " ")
	cleaned = whitespace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func matchColumn(cleaned, original []string, patterns []*regexp.Regexp) (string, bool) {
	for i, clean := range cleaned {
		for _, re := range patterns {
			if re.MatchString(clean) {
				return original[i], true
			}
		}
	}
	return "", false
}

func specsByField(entityType model.EntityType) map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp)
	for _, spec := range fieldPatterns[entityType] {
		out[spec.field] = spec.patterns
	}
	return out
}

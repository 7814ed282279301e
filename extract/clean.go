// Package extract builds canonical entity records and relationship
// mappings from raw workbooks.
package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/strataguard/riskdata/detect"
	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/source"
)

var whitespace = regexp.MustCompile(`\s+`)

// cleanValue normalizes a raw cell: runs of whitespace collapse to one
// space, leading/trailing whitespace is trimmed.
func cleanValue(v string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(v, " "))
}

// splitList splits a comma-separated reference cell into cleaned,
// non-empty tokens.
func splitList(v string) []string {
	var out []string
	for _, tok := range strings.Split(v, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// resolveFields builds the per-sheet field mapping: regex detection fills
// every field it can, then explicit config bindings override, provided the
// configured column actually exists in the sheet. Explicit config always
// wins over inference; when config rebinds a field detection resolved
// differently, the divergence is logged for diagnosis.
func resolveFields(sheet *source.Sheet, entityType model.EntityType, explicit map[string]string, detector *detect.Detector, logger *slog.Logger) detect.FieldMapping {
	detected := detector.DetectFields(sheet, entityType)

	fields := detect.FieldMapping{}
	for field, col := range detected {
		fields[field] = col
	}
	for field, col := range explicit {
		if sheet.HasColumn(col) {
			fields[field] = col
		}
	}

	if changes := detect.DetectSchemaChanges(detected, fields); !changes.Stable {
		logger.Debug("explicit config overrides detected columns",
			"sheet", sheet.Name,
			"entity_type", string(entityType),
			"changed", changes.ChangedFields)
	}
	return fields
}

// dedupeByID removes records sharing an ID, keeping the first occurrence.
// Returns the surviving records and the number removed.
func dedupeByID[T any](records []T, id func(T) string) ([]T, int) {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, rec := range records {
		key := id(rec)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out, len(records) - len(out)
}

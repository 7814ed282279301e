package validate

import (
	"fmt"
	"strings"
)

const (
	maxReportErrors   = 5
	maxReportWarnings = 3
)

// RenderReport formats entity reports into the human-readable validation
// summary. Error and warning lists are bounded; full counts are preserved
// in the "and N more" lines.
func RenderReport(reports []*EntityReport) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString(rule + "\n")
	b.WriteString("DATA VALIDATION REPORT\n")
	b.WriteString(rule + "\n")

	passed := 0
	for _, r := range reports {
		if r.Passed {
			passed++
		}
	}
	fmt.Fprintf(&b, "Total entities validated: %d\n", len(reports))
	fmt.Fprintf(&b, "Entities passed validation: %d\n", passed)
	fmt.Fprintf(&b, "Entities failed validation: %d\n\n", len(reports)-passed)

	for _, r := range reports {
		status := "FAILED"
		if r.Passed {
			status = "PASSED"
		}
		fmt.Fprintf(&b, "%s VALIDATION: %s\n", strings.ToUpper(string(r.EntityType)), status)
		fmt.Fprintf(&b, "  Total records: %d\n", r.TotalRecords)
		fmt.Fprintf(&b, "  Valid records: %d\n", r.ValidRecords)
		fmt.Fprintf(&b, "  Invalid records: %d\n", r.InvalidRecords)

		writeBounded(&b, "Errors", r.Errors, maxReportErrors)
		writeBounded(&b, "Warnings", r.Warnings, maxReportWarnings)
		b.WriteString("\n")
	}

	b.WriteString(rule)
	return b.String()
}

func writeBounded(b *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", label)
	for i, item := range items {
		if i == limit {
			break
		}
		fmt.Fprintf(b, "    - %s\n", item)
	}
	if len(items) > limit {
		fmt.Fprintf(b, "    ... and %d more %s\n", len(items)-limit, strings.ToLower(label))
	}
}

package validate

import (
	"fmt"
	"strings"

	"github.com/strataguard/riskdata/model"
)

// QualityStats summarizes one table for the consistency report.
type QualityStats struct {
	TotalRecords int
	Columns      int
	// Completeness maps column name to the ratio of non-empty values.
	Completeness map[string]float64
}

// ConsistencyReport is the outcome of cross-entity validation.
type ConsistencyReport struct {
	Passed     bool
	Errors     []string
	Warnings   []string
	Statistics map[string]QualityStats
}

// ValidateConsistency checks cross-entity references and computes
// per-column completeness for the three core tables. Mapping pairs whose
// risk side references an unknown risk are flagged as orphans (warning,
// not error).
func (v *Validator) ValidateConsistency(risks, controls, questions model.Table, riskControl model.Table) *ConsistencyReport {
	report := &ConsistencyReport{
		Passed:     true,
		Statistics: make(map[string]QualityStats, 3),
	}

	if !risks.Empty() && !riskControl.Empty() {
		orphans := orphanedReferences(risks.Column("risk_id"), riskControl.Column("risk_id"))
		if len(orphans) > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("found %d potentially orphaned control references", len(orphans)))
		}
	}

	report.Statistics[model.TableRisks] = qualityStats(risks)
	report.Statistics[model.TableControls] = qualityStats(controls)
	report.Statistics[model.TableQuestions] = qualityStats(questions)

	v.logger.Info("validated consistency", "warnings", len(report.Warnings))
	return report
}

// orphanedReferences returns the child IDs with no matching parent ID.
func orphanedReferences(parentIDs, childIDs []string) []string {
	parents := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = struct{}{}
	}
	seen := make(map[string]struct{})
	var orphans []string
	for _, id := range childIDs {
		if _, ok := parents[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		orphans = append(orphans, id)
	}
	return orphans
}

func qualityStats(table model.Table) QualityStats {
	stats := QualityStats{
		TotalRecords: len(table.Rows),
		Columns:      len(table.Columns),
		Completeness: make(map[string]float64, len(table.Columns)),
	}
	if table.Empty() {
		return stats
	}
	for i, col := range table.Columns {
		nonEmpty := 0
		for _, row := range table.Rows {
			if i < len(row) {
				if s, ok := row[i].(string); !ok || strings.TrimSpace(s) != "" {
					nonEmpty++
				}
			}
		}
		stats.Completeness[col] = float64(nonEmpty) / float64(len(table.Rows))
	}
	return stats
}

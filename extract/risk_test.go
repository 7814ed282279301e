package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataguard/riskdata/config"
	"github.com/strataguard/riskdata/source"
)

var riskSpec = config.SourceSpec{
	Columns: map[string]string{
		"id":          "ID",
		"title":       "Risk",
		"description": "Description",
	},
}

func riskWorkbook(rows [][]string) *source.Workbook {
	return &source.Workbook{
		Path: "risks.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Risks", []string{"ID", "Risk", "Description"}, rows),
		},
	}
}

func newRiskExtractor(t *testing.T, dedupe bool) *RiskExtractor {
	t.Helper()
	return NewRiskExtractor(riskSpec, dedupe, discardLogger())
}

func TestRiskExtract(t *testing.T) {
	wb := riskWorkbook([][]string{
		{"AIR.001", "Model drift", "Model behavior shifts over time"},
		{"AIR.2", "Data poisoning", "Training data tampering"},
		{"N/A", "Unclassified residual risk", ""},
	})

	risks, err := newRiskExtractor(t, true).Extract(wb)
	require.NoError(t, err)
	require.Len(t, risks, 3)

	assert.Equal(t, "R.AIR.001", risks[0].ID)
	assert.Equal(t, "Model drift", risks[0].Title)
	assert.Equal(t, "Model behavior shifts over time", risks[0].Description)

	// IDs keep their raw form: extraction prefixes, it never repairs.
	assert.Equal(t, "R.AIR.2", risks[1].ID)
	assert.Equal(t, "R.N/A", risks[2].ID)
}

func TestRiskExtractSkipsIncompleteRows(t *testing.T) {
	wb := riskWorkbook([][]string{
		{"AIR.001", "Model drift", ""},
		{"", "No ID here", "skipped"},
		{"AIR.003", "", "no title, skipped"},
		{"   ", "  ", "blank after cleaning, skipped"},
	})

	risks, err := newRiskExtractor(t, true).Extract(wb)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, "R.AIR.001", risks[0].ID)
}

func TestRiskExtractDedupeKeepsFirst(t *testing.T) {
	wb := riskWorkbook([][]string{
		{"AIR.001", "First occurrence", ""},
		{"AIR.001", "Repeated ID", ""},
		{"AIR.002", "Unaffected", ""},
	})

	risks, err := newRiskExtractor(t, true).Extract(wb)
	require.NoError(t, err)
	require.Len(t, risks, 2)
	assert.Equal(t, "First occurrence", risks[0].Title)

	// With dedup disabled both survive.
	risks, err = newRiskExtractor(t, false).Extract(wb)
	require.NoError(t, err)
	assert.Len(t, risks, 3)
}

func TestRiskExtractEmptyWorkbook(t *testing.T) {
	risks, err := newRiskExtractor(t, true).Extract(&source.Workbook{Path: "empty.xlsx"})
	require.NoError(t, err)
	assert.Empty(t, risks)

	risks, err = newRiskExtractor(t, true).Extract(riskWorkbook(nil))
	require.NoError(t, err)
	assert.Empty(t, risks)
}

func TestRiskExtractMissingColumnsIsError(t *testing.T) {
	wb := &source.Workbook{
		Path: "risks.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Risks", []string{"Unrelated", "Headers"}, [][]string{{"a", "b"}}),
		},
	}

	_, err := newRiskExtractor(t, true).Extract(wb)
	require.Error(t, err)
}

func TestRiskExtractDetectionFallback(t *testing.T) {
	// No explicit config: detection alone resolves renamed headers.
	wb := &source.Workbook{
		Path: "risks.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Risks", []string{"risk_id", "risk_title"}, [][]string{
				{"AIR.004", "Prompt injection"},
			}),
		},
	}

	e := NewRiskExtractor(config.SourceSpec{}, true, discardLogger())
	risks, err := e.Extract(wb)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, "R.AIR.004", risks[0].ID)
}

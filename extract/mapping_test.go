package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataguard/riskdata/config"
	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/normalize"
	"github.com/strataguard/riskdata/source"
)

func newMappingExtractor() *MappingExtractor {
	normalizer := normalize.NewNormalizer(normalize.Strict, discardLogger())
	return NewMappingExtractor(config.SourceSpec{}, normalizer, normalize.DefaultAcronyms, discardLogger())
}

func risksByID(ids ...string) []model.Risk {
	out := make([]model.Risk, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Risk{ID: id, Title: "risk " + id})
	}
	return out
}

func TestCreateRiskControlMappings(t *testing.T) {
	risks := risksByID("R.AIR.001", "R.AIR.002")
	controls := []model.Control{
		{ID: "C.AIIM.1", Title: "Model inventory", MappedRisks: "AIR.1"},
	}

	mappings := newMappingExtractor().CreateRiskControlMappings(risks, controls)
	require.Len(t, mappings, 1)
	assert.Equal(t, "R.AIR.001", mappings[0].RiskID)
	assert.Equal(t, "C.AIIM.1", mappings[0].ControlID)
}

func TestCreateRiskControlMappingsMixedPadding(t *testing.T) {
	// Short and padded references to the same risks resolve identically.
	risks := risksByID("R.AIR.001", "R.AIR.002")
	controls := []model.Control{
		{ID: "C.AIIM.1", MappedRisks: "AIR.1, AIR.002"},
		{ID: "C.AIIM.2", MappedRisks: "AIR.001, AIR.2"},
	}

	mappings := newMappingExtractor().CreateRiskControlMappings(risks, controls)
	require.Len(t, mappings, 4)

	pairs := make(map[string]bool)
	for _, m := range mappings {
		pairs[m.RiskID+"/"+m.ControlID] = true
	}
	for _, want := range []string{
		"R.AIR.001/C.AIIM.1", "R.AIR.002/C.AIIM.1",
		"R.AIR.001/C.AIIM.2", "R.AIR.002/C.AIIM.2",
	} {
		assert.True(t, pairs[want], "missing pair %s", want)
	}
}

func TestCreateRiskControlMappingsDedupesPairs(t *testing.T) {
	// The same risk listed in short and padded form is one pair, not two:
	// the mapping tables are unique on (risk_id, control_id).
	risks := risksByID("R.AIR.001")
	controls := []model.Control{
		{ID: "C.AIIM.1", MappedRisks: "AIR.1, AIR.001"},
	}

	mappings := newMappingExtractor().CreateRiskControlMappings(risks, controls)
	require.Len(t, mappings, 1)
	assert.Equal(t, "R.AIR.001", mappings[0].RiskID)
	assert.Equal(t, "C.AIIM.1", mappings[0].ControlID)
}

func TestCreateRiskControlMappingsDropsUnknownRisk(t *testing.T) {
	risks := risksByID("R.AIR.001")
	controls := []model.Control{
		{ID: "C.AIIM.1", MappedRisks: "AIR.999"},
	}

	mappings := newMappingExtractor().CreateRiskControlMappings(risks, controls)
	assert.Empty(t, mappings)
}

func TestCreateRiskControlMappingsNoControls(t *testing.T) {
	mappings := newMappingExtractor().CreateRiskControlMappings(risksByID("R.AIR.001"), nil)
	assert.Empty(t, mappings)
}

func TestExtractQuestionMappings(t *testing.T) {
	wb := &source.Workbook{
		Path: "questions.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Cyber Risk Architecture",
				[]string{"ID", "Question", "Risk Mapping", "Control Mapping"},
				[][]string{
					{"6.1", "How is input validated?", "AIR.1", "AIIM.1"},
					{"6.2", "Placeholder refs are dropped", "TBD", "TBD"},
					{"6.3", "Unknown refs are dropped", "AIR.999", "ZZZZ.9"},
					{"6.1", "Duplicate pair collapses", "AIR.1", "AIIM.1"},
				}),
		},
	}

	risks := risksByID("R.AIR.001")
	controls := []model.Control{{ID: "C.AIIM.1"}}

	riskMaps, controlMaps := newMappingExtractor().ExtractQuestionMappings(wb, risks, controls)

	require.Len(t, riskMaps, 1)
	assert.Equal(t, "Q.CRA.6.1", riskMaps[0].QuestionID)
	assert.Equal(t, "R.AIR.001", riskMaps[0].RiskID)

	require.Len(t, controlMaps, 1)
	assert.Equal(t, "Q.CRA.6.1", controlMaps[0].QuestionID)
	assert.Equal(t, "C.AIIM.1", controlMaps[0].ControlID)
}

func TestExtractQuestionMappingsRejectsFreeTextReferences(t *testing.T) {
	// A strict normalizer drops prose cells instead of extracting their
	// digits into a resolvable ID.
	wb := &source.Workbook{
		Path: "questions.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Cyber Risk Architecture",
				[]string{"ID", "Question", "Risk Mapping", "Control Mapping"},
				[][]string{
					{"6.1", "Where is the model registry?", "see row 12", ""},
				}),
		},
	}

	riskMaps, _ := newMappingExtractor().ExtractQuestionMappings(wb, risksByID("R.AIR.012"), nil)
	assert.Empty(t, riskMaps)
}

func TestExtractQuestionMappingsIgnoresUnnamedColumns(t *testing.T) {
	// When no risk mapping column is detected, cells under an unnamed
	// header must not be read as risk references.
	wb := &source.Workbook{
		Path: "questions.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Cyber Risk Architecture",
				[]string{"ID", "Question", "", "Control Mapping"},
				[][]string{
					{"6.1", "How is access reviewed?", "AIR.001", "AIIM.1"},
				}),
		},
	}

	riskMaps, controlMaps := newMappingExtractor().ExtractQuestionMappings(wb,
		risksByID("R.AIR.001"), []model.Control{{ID: "C.AIIM.1"}})

	assert.Empty(t, riskMaps)
	require.Len(t, controlMaps, 1)
	assert.Equal(t, "C.AIIM.1", controlMaps[0].ControlID)
}

func TestExtractQuestionMappingsNoMappingColumns(t *testing.T) {
	wb := &source.Workbook{
		Path: "questions.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Operational Assurance",
				[]string{"ID", "Question"},
				[][]string{{"1", "No mapping columns here"}}),
		},
	}

	riskMaps, controlMaps := newMappingExtractor().ExtractQuestionMappings(wb, nil, nil)
	assert.Empty(t, riskMaps)
	assert.Empty(t, controlMaps)
}

func TestCreateCapabilityControlMappings(t *testing.T) {
	capabilities := []model.Capability{
		{ID: "CAP.TECH.001", Controls: "AIIM.1, C.AISE.2"},
		{ID: "CAP.TECH.002", Controls: "ZZZZ.9"},
		{ID: "CAP.NONTECH.001", Controls: ""},
	}
	controls := []model.Control{{ID: "C.AIIM.1"}, {ID: "C.AISE.2"}}

	mappings := newMappingExtractor().CreateCapabilityControlMappings(capabilities, controls)
	require.Len(t, mappings, 2)

	// Bare codes gain the control prefix; already-prefixed codes pass through.
	assert.Equal(t, "CAP.TECH.001", mappings[0].CapabilityID)
	assert.Equal(t, "C.AIIM.1", mappings[0].ControlID)
	assert.Equal(t, "C.AISE.2", mappings[1].ControlID)
}

func TestCreateCapabilityControlMappingsDedupesPairs(t *testing.T) {
	// Bare and prefixed spellings of the same control collapse to one pair.
	capabilities := []model.Capability{
		{ID: "CAP.TECH.001", Controls: "AIIM.1, C.AIIM.1"},
	}
	controls := []model.Control{{ID: "C.AIIM.1"}}

	mappings := newMappingExtractor().CreateCapabilityControlMappings(capabilities, controls)
	require.Len(t, mappings, 1)
	assert.Equal(t, "CAP.TECH.001", mappings[0].CapabilityID)
	assert.Equal(t, "C.AIIM.1", mappings[0].ControlID)
}

func TestPadMappedRisk(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AIR.1", "AIR.001"},
		{"AIR.12", "AIR.012"},
		{"AIR.001", "AIR.001"},
		{"AIR.1234", "AIR.1234"},
		{"AIR.TBD", "AIR.TBD"},
		{"noseparator", "noseparator"},
	}
	for _, tt := range tests {
		if got := padMappedRisk(tt.in); got != tt.want {
			t.Errorf("padMappedRisk(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataguard/riskdata/config"
	"github.com/strataguard/riskdata/normalize"
	"github.com/strataguard/riskdata/source"
)

func newQuestionExtractor(t *testing.T) *QuestionExtractor {
	t.Helper()
	return NewQuestionExtractor(config.SourceSpec{}, normalize.DefaultAcronyms, true, discardLogger())
}

func TestQuestionExtract(t *testing.T) {
	wb := &source.Workbook{
		Path: "questions.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Cyber Risk Architecture",
				[]string{"ID", "Question", "Category"},
				[][]string{
					{"CRA6.1", "How are model inputs validated?", "Architecture"},
				}),
		},
	}

	questions, err := newQuestionExtractor(t).Extract(wb)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "Q.CRA.CRA6.1", q.ID)
	assert.Equal(t, "How are model inputs validated?", q.Text)
	assert.Equal(t, "Cyber Risk Architecture", q.ManagingRole)
	assert.Equal(t, "Architecture", q.Category)
}

func TestQuestionExtractCrossSheetCollision(t *testing.T) {
	// The same raw ID on two sheets yields two distinct questions because
	// the sheet acronym is part of the ID.
	headers := []string{"ID", "Question"}
	wb := &source.Workbook{
		Path: "questions.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Cyber Risk Architecture", headers, [][]string{{"6.1", "From CRA"}}),
			source.NewSheet("Operational Assurance", headers, [][]string{{"6.1", "From OA"}}),
		},
	}

	questions, err := newQuestionExtractor(t).Extract(wb)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "Q.CRA.6.1", questions[0].ID)
	assert.Equal(t, "Q.OA.6.1", questions[1].ID)
}

func TestQuestionExtractUnknownSheetDerivesAcronym(t *testing.T) {
	wb := &source.Workbook{
		Path: "questions.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("ML Ops", []string{"ID", "Question"}, [][]string{{"1", "Who owns deployment?"}}),
		},
	}

	questions, err := newQuestionExtractor(t).Extract(wb)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Q.MLOPS.1", questions[0].ID)
}

func TestQuestionExtractSkipsIncompleteRows(t *testing.T) {
	wb := &source.Workbook{
		Path: "questions.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Operational Assurance",
				[]string{"ID", "Question"},
				[][]string{
					{"1", "Kept"},
					{"", "No ID"},
					{"3", ""},
				}),
		},
	}

	questions, err := newQuestionExtractor(t).Extract(wb)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Q.OA.1", questions[0].ID)
}

func TestQuestionExtractSkipsSheetWithoutColumns(t *testing.T) {
	wb := &source.Workbook{
		Path: "questions.xlsx",
		Sheets: []*source.Sheet{
			source.NewSheet("Notes", []string{"Remarks"}, [][]string{{"not a question sheet"}}),
			source.NewSheet("Operational Assurance",
				[]string{"ID", "Question"},
				[][]string{{"2", "Kept"}}),
		},
	}

	questions, err := newQuestionExtractor(t).Extract(wb)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Q.OA.2", questions[0].ID)
}

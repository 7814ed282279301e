package extract

import (
	"log/slog"

	"github.com/strataguard/riskdata/config"
	"github.com/strataguard/riskdata/detect"
	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/normalize"
	"github.com/strataguard/riskdata/source"
)

// QuestionExtractor reads interview questions from every sheet of the
// questions workbook. Each sheet belongs to one managing role; the sheet
// name is folded into the question ID so that identical raw IDs from
// different roles stay distinct.
type QuestionExtractor struct {
	spec     config.SourceSpec
	detector *detect.Detector
	acronyms *normalize.AcronymTable
	dedupe   bool
	logger   *slog.Logger
}

// NewQuestionExtractor returns an extractor bound to the given source spec.
func NewQuestionExtractor(spec config.SourceSpec, acronyms *normalize.AcronymTable, dedupe bool, logger *slog.Logger) *QuestionExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionExtractor{
		spec:     spec,
		detector: detect.NewDetector(),
		acronyms: acronyms,
		dedupe:   dedupe,
		logger:   logger,
	}
}

// Extract returns the questions found across all sheets. Empty sheets
// and sheets with no usable ID or text column are skipped with a warning.
func (e *QuestionExtractor) Extract(wb *source.Workbook) ([]model.Question, error) {
	var questions []model.Question
	for _, sheet := range wb.Sheets {
		if sheet.Empty() {
			e.logger.Warn("question sheet is empty, skipping", "sheet", sheet.Name)
			continue
		}
		fields := resolveFields(sheet, model.EntityTypeQuestion, e.spec.Columns, e.detector, e.logger)
		idCol, hasID := fields["id"]
		textCol, hasText := fields["text"]
		if !hasID || !hasText {
			e.logger.Warn("question sheet missing ID or text column, skipping", "sheet", sheet.Name)
			continue
		}

		acronym := e.acronyms.ForID(sheet.Name)
		count := 0
		for i := range sheet.Rows {
			rawID := cleanValue(sheet.Value(i, idCol))
			text := cleanValue(sheet.Value(i, textCol))
			if rawID == "" || text == "" {
				e.logger.Warn("skipping question row with missing ID or text", "sheet", sheet.Name, "row", i+2)
				continue
			}
			q := model.Question{
				ID:           model.QuestionIDPrefix + acronym + "." + rawID,
				Text:         text,
				ManagingRole: sheet.Name,
			}
			if col := fields["category"]; col != "" {
				q.Category = cleanValue(sheet.Value(i, col))
			}
			if col := fields["topic"]; col != "" {
				q.Topic = cleanValue(sheet.Value(i, col))
			}
			questions = append(questions, q)
			count++
		}
		e.logger.Info("extracted questions from sheet", "sheet", sheet.Name, "count", count)
	}

	if e.dedupe {
		var removed int
		questions, removed = dedupeByID(questions, func(q model.Question) string { return q.ID })
		if removed > 0 {
			e.logger.Info("removed duplicate questions", "count", removed)
		}
	}

	e.logger.Info("extracted questions", "count", len(questions))
	return questions, nil
}

package model

// Table names written by the pipeline. The sink rejects anything else.
const (
	TableRisks                    = "risks"
	TableControls                 = "controls"
	TableQuestions                = "questions"
	TableDefinitions              = "definitions"
	TableCapabilities             = "capabilities"
	TableRiskControlMapping       = "risk_control_mapping"
	TableQuestionRiskMapping      = "question_risk_mapping"
	TableQuestionControlMapping   = "question_control_mapping"
	TableCapabilityControlMapping = "capability_control_mapping"
)

// Table is a materialized relational table: column names plus rows of
// values aligned to them. Tables are built once per run from the typed
// record slices and handed to the sink and validator.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// ColumnIndex returns the position of a column, or -1 if absent.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns all values of one column as strings. Missing columns
// yield nil.
func (t Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			if s, ok := row[idx].(string); ok {
				out = append(out, s)
			} else {
				out = append(out, "")
			}
		}
	}
	return out
}

// RisksTable materializes risks in storage column order.
func RisksTable(risks []Risk) Table {
	t := Table{
		Name:    TableRisks,
		Columns: []string{"risk_id", "risk_title", "risk_description"},
	}
	for _, r := range risks {
		t.Rows = append(t.Rows, []any{r.ID, r.Title, r.Description})
	}
	return t
}

// ControlsTable materializes controls in storage column order.
func ControlsTable(controls []Control) Table {
	t := Table{
		Name: TableControls,
		Columns: []string{
			"control_id", "control_title", "control_description",
			"mapped_risks", "asset_type", "control_type",
			"security_function", "maturity_level",
		},
	}
	for _, c := range controls {
		t.Rows = append(t.Rows, []any{
			c.ID, c.Title, c.Description, c.MappedRisks,
			c.AssetType, c.ControlType, c.SecurityFunction, c.MaturityLevel,
		})
	}
	return t
}

// QuestionsTable materializes questions in storage column order.
func QuestionsTable(questions []Question) Table {
	t := Table{
		Name:    TableQuestions,
		Columns: []string{"question_id", "question_text", "category", "topic", "managing_role"},
	}
	for _, q := range questions {
		t.Rows = append(t.Rows, []any{q.ID, q.Text, q.Category, q.Topic, q.ManagingRole})
	}
	return t
}

// DefinitionsTable materializes definitions in storage column order.
func DefinitionsTable(defs []Definition) Table {
	t := Table{
		Name:    TableDefinitions,
		Columns: []string{"definition_id", "term", "title", "description", "category", "source"},
	}
	for _, d := range defs {
		t.Rows = append(t.Rows, []any{d.ID, d.Term, d.Title, d.Description, d.Category, d.Source})
	}
	return t
}

// CapabilitiesTable materializes capabilities in storage column order.
func CapabilitiesTable(caps []Capability) Table {
	t := Table{
		Name: TableCapabilities,
		Columns: []string{
			"capability_id", "capability_name", "capability_type",
			"capability_domain", "capability_definition", "controls",
			"candidate_products", "notes",
		},
	}
	for _, c := range caps {
		t.Rows = append(t.Rows, []any{
			c.ID, c.Name, string(c.Type), c.Domain, c.Definition,
			c.Controls, c.CandidateProducts, c.Notes,
		})
	}
	return t
}

// RiskControlTable materializes risk-control pairs.
func RiskControlTable(mappings []RiskControlMapping) Table {
	t := Table{Name: TableRiskControlMapping, Columns: []string{"risk_id", "control_id"}}
	for _, m := range mappings {
		t.Rows = append(t.Rows, []any{m.RiskID, m.ControlID})
	}
	return t
}

// QuestionRiskTable materializes question-risk pairs.
func QuestionRiskTable(mappings []QuestionRiskMapping) Table {
	t := Table{Name: TableQuestionRiskMapping, Columns: []string{"question_id", "risk_id"}}
	for _, m := range mappings {
		t.Rows = append(t.Rows, []any{m.QuestionID, m.RiskID})
	}
	return t
}

// QuestionControlTable materializes question-control pairs.
func QuestionControlTable(mappings []QuestionControlMapping) Table {
	t := Table{Name: TableQuestionControlMapping, Columns: []string{"question_id", "control_id"}}
	for _, m := range mappings {
		t.Rows = append(t.Rows, []any{m.QuestionID, m.ControlID})
	}
	return t
}

// CapabilityControlTable materializes capability-control pairs.
func CapabilityControlTable(mappings []CapabilityControlMapping) Table {
	t := Table{Name: TableCapabilityControlMapping, Columns: []string{"capability_id", "control_id"}}
	for _, m := range mappings {
		t.Rows = append(t.Rows, []any{m.CapabilityID, m.ControlID})
	}
	return t
}

package detect

import (
	"testing"

	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/source"
)

func sheet(columns ...string) *source.Sheet {
	return source.NewSheet("test", columns, nil)
}

func TestDetectFieldsRisk(t *testing.T) {
	s := sheet("ID", "Risk", "Description", "MIT Risk Category")

	fields := NewDetector().DetectFields(s, model.EntityTypeRisk)

	want := map[string]string{
		"id":          "ID",
		"title":       "Risk",
		"description": "Description",
		"category":    "MIT Risk Category",
	}
	for field, col := range want {
		if fields[field] != col {
			t.Errorf("field %q = %q, want %q", field, fields[field], col)
		}
	}
	if _, ok := fields["tactic"]; ok {
		t.Error("tactic should be absent when no column matches")
	}
}

func TestDetectFieldsRenamedColumns(t *testing.T) {
	// Separators in headers fold to spaces before matching.
	s := sheet("risk_id", "Risk.Title", "risk-description")

	fields := NewDetector().DetectFields(s, model.EntityTypeRisk)

	if fields["id"] != "risk_id" {
		t.Errorf("id = %q, want risk_id", fields["id"])
	}
	if fields["title"] != "Risk.Title" {
		t.Errorf("title = %q, want Risk.Title", fields["title"])
	}
	if fields["description"] != "risk-description" {
		t.Errorf("description = %q, want risk-description", fields["description"])
	}
}

func TestDetectFieldsFirstMatchWins(t *testing.T) {
	s := sheet("Question Number", "ID", "Question")

	fields := NewDetector().DetectFields(s, model.EntityTypeQuestion)

	// "Question Number" appears first and matches an id pattern.
	if fields["id"] != "Question Number" {
		t.Errorf("id = %q, want Question Number", fields["id"])
	}
	if fields["text"] != "Question" {
		t.Errorf("text = %q, want Question", fields["text"])
	}
}

func TestDetectFieldsUnknownEntity(t *testing.T) {
	fields := NewDetector().DetectFields(sheet("Term"), model.EntityTypeDefinition)
	if len(fields) != 0 {
		t.Errorf("expected empty mapping for entity type without patterns, got %v", fields)
	}
}

func TestSuggestFieldMappings(t *testing.T) {
	s := sheet("ID", "Control ID", "Purpose", "Control Title")

	suggestions := NewDetector().SuggestFieldMappings(s, model.EntityTypeControl, []string{"id", "title"})

	if len(suggestions["id"]) != 2 {
		t.Errorf("id suggestions = %v, want both ID and Control ID", suggestions["id"])
	}
	if len(suggestions["title"]) != 2 {
		t.Errorf("title suggestions = %v, want both Purpose and Control Title", suggestions["title"])
	}
}

func TestValidateRequiredFields(t *testing.T) {
	s := sheet("ID", "Risk")

	ok, missing := NewDetector().ValidateRequiredFields(s, model.EntityTypeRisk, []string{"id", "title", "description"})
	if ok {
		t.Error("expected validation failure with description missing")
	}
	if len(missing) != 1 || missing[0] != "description" {
		t.Errorf("missing = %v, want [description]", missing)
	}

	ok, missing = NewDetector().ValidateRequiredFields(s, model.EntityTypeRisk, []string{"id", "title"})
	if !ok || len(missing) != 0 {
		t.Errorf("expected validation success, missing = %v", missing)
	}
}

func TestFieldStatistics(t *testing.T) {
	s := source.NewSheet("test", []string{"ID", "Risk"}, [][]string{
		{"AIR.001", "Model drift"},
		{"AIR.002", ""},
		{"", "No ID"},
	})

	stats := NewDetector().FieldStatistics(s, model.EntityTypeRisk)

	id := stats["id"]
	if id.NonEmpty != 2 || id.Total != 3 {
		t.Errorf("id stats = %d/%d, want 2/3", id.NonEmpty, id.Total)
	}
	title := stats["title"]
	if title.NonEmpty != 2 || title.Completeness <= 0.6 || title.Completeness >= 0.7 {
		t.Errorf("title stats = %d, completeness %f", title.NonEmpty, title.Completeness)
	}
}

func TestCleanColumnName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Risk_ID", "risk id"},
		{"  Control.Title  ", "control title"},
		{"mapped-risks", "mapped risks"},
		{"A,B;C:D", "a b c d"},
		{"already clean", "already clean"},
	}
	for _, tt := range tests {
		if got := CleanColumnName(tt.in); got != tt.want {
			t.Errorf("CleanColumnName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectSchemaChanges(t *testing.T) {
	oldMapping := FieldMapping{"id": "ID", "title": "Risk", "category": "Category"}
	newMapping := FieldMapping{"id": "Risk ID", "title": "Risk", "description": "Description"}

	changes := DetectSchemaChanges(oldMapping, newMapping)

	if len(changes.AddedFields) != 1 || changes.AddedFields[0] != "description" {
		t.Errorf("added = %v", changes.AddedFields)
	}
	if len(changes.RemovedFields) != 1 || changes.RemovedFields[0] != "category" {
		t.Errorf("removed = %v", changes.RemovedFields)
	}
	if len(changes.ChangedFields) != 1 || changes.ChangedFields[0] != "id" {
		t.Errorf("changed = %v", changes.ChangedFields)
	}
	if changes.Stable {
		t.Error("schema with removed and changed fields must not be stable")
	}

	same := DetectSchemaChanges(oldMapping, oldMapping)
	if !same.Stable {
		t.Error("identical mappings must be stable")
	}

	addedOnly := DetectSchemaChanges(
		FieldMapping{"id": "ID"},
		FieldMapping{"id": "ID", "title": "Risk"})
	if !addedOnly.Stable {
		t.Error("additions alone keep the schema stable")
	}
}

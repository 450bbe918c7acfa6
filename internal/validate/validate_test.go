package validate

import (
	"testing"

	"micelio/internal/config"
	"micelio/internal/content"
)

func TestRun_Clean(t *testing.T) {
	ds := &content.Dataset{
		Characters: []content.Character{
			{ID: "tamen", Name: "Tamen", Relations: []content.Relation{{Target: "vaquero", Type: "aliado"}}},
			{ID: "vaquero", Name: "Vaquero"},
		},
		Timeline: []content.Event{
			{ID: "a", Title: "A", Stage: "origin"},
			{ID: "b", Title: "B", SimultaneousWith: []string{"a"}},
		},
	}
	report := Run(ds, config.DefaultStages())
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
	if report.HasErrors() {
		t.Fatalf("expected no errors")
	}
}

func TestRun_DuplicateID(t *testing.T) {
	ds := &content.Dataset{
		Songs: []content.Song{{ID: "balada", Title: "Balada"}, {ID: "balada", Title: "Otra"}},
	}
	report := Run(ds, config.DefaultStages())
	if !hasIssueCode(report.Issues, codeDuplicateID) {
		t.Fatalf("expected duplicate id issue")
	}
	if !report.HasErrors() {
		t.Fatalf("expected duplicate ids to be errors")
	}
}

func TestRun_MissingRequiredProperty(t *testing.T) {
	ds := &content.Dataset{
		Locations: []content.Location{{ID: "", Name: "Sin id"}, {ID: "sin-nombre"}},
	}
	report := Run(ds, config.DefaultStages())
	errs, _ := report.Counts()
	if errs != 2 || !hasIssueCode(report.Issues, codeMissingRequired) {
		t.Fatalf("expected two missing property errors, got %+v", report.Issues)
	}
}

func TestRun_DanglingRelation(t *testing.T) {
	ds := &content.Dataset{
		Characters: []content.Character{{ID: "tamen", Name: "Tamen", Relations: []content.Relation{{Target: "ghost", Type: "eco"}}}},
	}
	report := Run(ds, config.DefaultStages())
	if !hasIssueCode(report.Issues, codeDanglingRelation) {
		t.Fatalf("expected dangling relation issue")
	}
	if report.HasErrors() {
		t.Fatalf("expected dangling relation to be a warning")
	}
}

func TestRun_Timeline(t *testing.T) {
	ds := &content.Dataset{
		Timeline: []content.Event{
			{ID: "a", Title: "A", Stage: "nowhere"},
			{ID: "b", Title: "B", SimultaneousWith: []string{"ghost"}},
			{ID: "c", Title: "C", SimultaneousWith: []string{"c"}},
		},
	}
	report := Run(ds, config.DefaultStages())
	for _, code := range []string{codeUnknownStage, codeDanglingSimultaneity, codeSelfSimultaneity} {
		if !hasIssueCode(report.Issues, code) {
			t.Fatalf("expected %s issue, got %+v", code, report.Issues)
		}
	}
	errs, warnings := report.Counts()
	if errs != 0 || warnings != 3 {
		t.Fatalf("expected 0 errors and 3 warnings, got %d and %d", errs, warnings)
	}
}

func hasIssueCode(issues []Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

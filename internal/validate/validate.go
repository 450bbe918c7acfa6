package validate

import (
	"fmt"
	"strings"

	"micelio/internal/config"
	"micelio/internal/content"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeMissingRequired      = "missing_required_property"
	codeDuplicateID          = "duplicate_id"
	codeUnknownStage         = "unknown_stage"
	codeDanglingRelation     = "dangling_relation"
	codeDanglingSimultaneity = "dangling_simultaneity"
	codeSelfSimultaneity     = "self_simultaneity"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Kind     content.Kind
	Entity   string
}

type Report struct {
	Issues []Issue
}

func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Counts returns the number of errors and warnings.
func (r *Report) Counts() (errs, warnings int) {
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityError:
			errs++
		case SeverityWarn:
			warnings++
		}
	}
	return errs, warnings
}

// Run checks a loaded dataset. Dangling references never break the
// pipeline, so they are reported as warnings; duplicate ids and missing
// names are errors.
func Run(ds *content.Dataset, stages config.StageSet) *Report {
	issues := make([]Issue, 0)

	characters := make([]entry, 0, len(ds.Characters))
	for _, c := range ds.Characters {
		characters = append(characters, entry{id: c.ID, name: c.Name})
	}
	locations := make([]entry, 0, len(ds.Locations))
	for _, l := range ds.Locations {
		locations = append(locations, entry{id: l.ID, name: l.Name})
	}
	songs := make([]entry, 0, len(ds.Songs))
	for _, s := range ds.Songs {
		songs = append(songs, entry{id: s.ID, name: s.Title})
	}
	plots := make([]entry, 0, len(ds.Plots))
	for _, p := range ds.Plots {
		plots = append(plots, entry{id: p.ID, name: p.Title})
	}
	events := make([]entry, 0, len(ds.Timeline))
	for _, e := range ds.Timeline {
		events = append(events, entry{id: e.ID, name: e.Title})
	}

	issues = append(issues, validateCollection(content.KindCharacter, characters)...)
	issues = append(issues, validateCollection(content.KindLocation, locations)...)
	issues = append(issues, validateCollection(content.KindSong, songs)...)
	issues = append(issues, validateCollection(content.KindPlot, plots)...)
	issues = append(issues, validateCollection(content.KindEvent, events)...)
	issues = append(issues, validateRelations(ds.Characters)...)
	issues = append(issues, validateTimeline(ds.Timeline, stages)...)

	return &Report{Issues: issues}
}

type entry struct {
	id   string
	name string
}

func validateCollection(kind content.Kind, entries []entry) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.id) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeMissingRequired,
				Message:  fmt.Sprintf("%s %d has no id", kind, i),
				Kind:     kind,
			})
			continue
		}
		if strings.TrimSpace(e.name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeMissingRequired,
				Message:  "missing required property: name",
				Kind:     kind,
				Entity:   e.id,
			})
		}
		if seen[e.id] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateID,
				Message:  fmt.Sprintf("duplicate %s id", kind),
				Kind:     kind,
				Entity:   e.id,
			})
		}
		seen[e.id] = true
	}
	return issues
}

func validateRelations(characters []content.Character) []Issue {
	known := make(map[string]bool, len(characters))
	for _, c := range characters {
		known[c.ID] = true
	}

	var issues []Issue
	for _, c := range characters {
		for _, rel := range c.Relations {
			if known[rel.Target] {
				continue
			}
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeDanglingRelation,
				Message:  fmt.Sprintf("relation %q targets unknown character %q", rel.Type, rel.Target),
				Kind:     content.KindCharacter,
				Entity:   c.ID,
			})
		}
	}
	return issues
}

func validateTimeline(events []content.Event, stages config.StageSet) []Issue {
	known := make(map[string]bool, len(events))
	for _, e := range events {
		known[e.ID] = true
	}

	var issues []Issue
	for _, e := range events {
		if e.Stage != "" {
			if _, ok := stages.ByKey(e.Stage); !ok {
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeUnknownStage,
					Message:  fmt.Sprintf("unknown stage %q", e.Stage),
					Kind:     content.KindEvent,
					Entity:   e.ID,
				})
			}
		}
		for _, ref := range e.SimultaneousWith {
			switch {
			case ref == e.ID:
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeSelfSimultaneity,
					Message:  "event is declared simultaneous with itself",
					Kind:     content.KindEvent,
					Entity:   e.ID,
				})
			case !known[ref]:
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeDanglingSimultaneity,
					Message:  fmt.Sprintf("simultaneous with unknown event %q", ref),
					Kind:     content.KindEvent,
					Entity:   e.ID,
				})
			}
		}
	}
	return issues
}

package timeline

import (
	"math"
	"time"

	"micelio/internal/config"
	"micelio/internal/content"
)

// Range is a [Start, End) slice of the 0-100 progress axis.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Placement is one event with its resolved stage and final range.
type Placement struct {
	Event content.Event
	Stage config.Stage
	Range Range
}

// StageFor resolves the stage an event is laid out in. Empty and unknown
// keys fall back to defaultStage.
func StageFor(e content.Event, stages config.StageSet, defaultStage string) config.Stage {
	if stage, ok := stages.ByKey(e.Stage); ok {
		return stage
	}
	stage, _ := stages.ByKey(defaultStage)
	return stage
}

// Allocate assigns ranges in three passes:
//
//  1. per stage, events without simultaneity references split the stage
//     evenly in input order;
//  2. per stage, every other event adopts the range of its first already
//     assigned reference, or is split among the still unassigned events of
//     its stage when none resolves;
//  3. anything left unassigned is not in the map; Place gives it the last
//     percent of its stage.
//
// Ranges are keyed by event id. Only the first event with a given id takes
// part; later ones are ignored.
func Allocate(events []content.Event, stages config.StageSet, defaultStage string) map[string]Range {
	ordered := stages.Sorted()

	byStage := make(map[string][]content.Event)
	for _, e := range Unique(events) {
		key := StageFor(e, stages, defaultStage).Key
		byStage[key] = append(byStage[key], e)
	}

	assigned := make(map[string]Range)

	for _, stage := range ordered {
		var independent []content.Event
		for _, e := range byStage[stage.Key] {
			if _, done := assigned[e.ID]; done || len(e.SimultaneousWith) > 0 {
				continue
			}
			independent = append(independent, e)
		}
		for i, e := range independent {
			assigned[e.ID] = slot(stage, i, len(independent))
		}
	}

	for _, stage := range ordered {
		stageEvents := byStage[stage.Key]
		for pos, e := range stageEvents {
			if _, done := assigned[e.ID]; done {
				continue
			}
			if r, ok := firstAssigned(e.SimultaneousWith, assigned); ok {
				assigned[e.ID] = r
				continue
			}
			index, remaining := 0, 0
			for other, candidate := range stageEvents {
				if _, done := assigned[candidate.ID]; done {
					continue
				}
				if other < pos {
					index++
				}
				remaining++
			}
			assigned[e.ID] = slot(stage, index, remaining)
		}
	}

	return assigned
}

func firstAssigned(refs []string, assigned map[string]Range) (Range, bool) {
	for _, ref := range refs {
		if r, ok := assigned[ref]; ok {
			return r, true
		}
	}
	return Range{}, false
}

// slot returns the index-th of n equal sub-ranges of stage. Neighbouring
// slots share their boundary value exactly and the last one ends on the
// stage end.
func slot(stage config.Stage, index, n int) Range {
	width := stage.Width() / float64(n)
	r := Range{
		Start: stage.PercentStart + float64(index)*width,
		End:   stage.PercentStart + float64(index+1)*width,
	}
	if index == n-1 {
		r.End = stage.PercentEnd
	}
	return r
}

// Fallback is the range given to an event no pass could place.
func Fallback(stage config.Stage) Range {
	return Range{Start: stage.PercentEnd - 1, End: stage.PercentEnd}
}

// Unique drops every event whose id was already seen, keeping input order.
func Unique(events []content.Event) []content.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]content.Event, 0, len(events))
	for _, e := range events {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Place runs Allocate and materializes one placement per distinct event id
// in input order.
func Place(events []content.Event, stages config.StageSet, defaultStage string) []Placement {
	events = Unique(events)
	ranges := Allocate(events, stages, defaultStage)
	out := make([]Placement, 0, len(events))
	for _, e := range events {
		stage := StageFor(e, stages, defaultStage)
		r, ok := ranges[e.ID]
		if !ok {
			r = Fallback(stage)
		}
		out = append(out, Placement{Event: e, Stage: stage, Range: r})
	}
	return out
}

// Instant maps a percentage to epoch + pct days, rounded to the microsecond.
func Instant(epoch time.Time, pct float64) time.Time {
	micros := math.RoundToEven(pct * 24 * float64(time.Hour/time.Microsecond))
	return epoch.Add(time.Duration(micros) * time.Microsecond)
}

// FormatInstant renders t as a local ISO-8601 timestamp, with microseconds
// only when they are non-zero.
func FormatInstant(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000000")
}

package timeline

import (
	"testing"
	"time"

	"micelio/internal/config"
	"micelio/internal/content"
)

func TestAllocateIndependent(t *testing.T) {
	t.Run("three origin events", func(t *testing.T) {
		events := []content.Event{
			{ID: "a", Stage: "origin"},
			{ID: "b", Stage: "origin"},
			{ID: "c", Stage: "origin"},
		}
		got := Allocate(events, config.DefaultStages(), "future")
		want := map[string]Range{"a": {0, 5}, "b": {5, 10}, "c": {10, 15}}
		for id, r := range want {
			if got[id] != r {
				t.Fatalf("%s: expected %v, got %v", id, r, got[id])
			}
		}
	})

	t.Run("sub-ranges tile the stage", func(t *testing.T) {
		stages := config.DefaultStages()
		for _, stage := range stages {
			for n := 1; n <= 9; n++ {
				events := make([]content.Event, n)
				for i := range events {
					events[i] = content.Event{ID: string(rune('a' + i)), Stage: stage.Key}
				}
				ranges := Allocate(events, stages, "future")
				prev := stage.PercentStart
				for _, e := range events {
					r := ranges[e.ID]
					if r.Start != prev {
						t.Fatalf("%s n=%d: expected start %v, got %v", stage.Key, n, prev, r.Start)
					}
					if r.End <= r.Start {
						t.Fatalf("%s n=%d: degenerate range %v", stage.Key, n, r)
					}
					prev = r.End
				}
				if prev != stage.PercentEnd {
					t.Fatalf("%s n=%d: expected coverage to %v, got %v", stage.Key, n, stage.PercentEnd, prev)
				}
			}
		}
	})
}

func TestAllocateSimultaneity(t *testing.T) {
	stages := config.StageSet{
		{Key: "before", PercentStart: 0, PercentEnd: 10, Order: 0},
		{Key: "narrow", PercentStart: 10, PercentEnd: 12, Order: 1},
		{Key: "after", PercentStart: 12, PercentEnd: 100, Order: 2},
	}

	t.Run("adopts exact range", func(t *testing.T) {
		events := []content.Event{
			{ID: "b", Stage: "after", SimultaneousWith: []string{"a"}},
			{ID: "a", Stage: "narrow"},
		}
		got := Allocate(events, stages, "after")
		if got["a"] != (Range{10, 12}) {
			t.Fatalf("expected a at [10,12], got %v", got["a"])
		}
		if got["b"] != got["a"] {
			t.Fatalf("expected b to share a's range, got %v", got["b"])
		}
	})

	t.Run("first resolved reference wins", func(t *testing.T) {
		events := []content.Event{
			{ID: "x", Stage: "before"},
			{ID: "y", Stage: "narrow"},
			{ID: "z", Stage: "after", SimultaneousWith: []string{"ghost", "y", "x"}},
		}
		got := Allocate(events, stages, "after")
		if got["z"] != got["y"] {
			t.Fatalf("expected z to share y's range, got %v", got["z"])
		}
	})

	t.Run("dangling reference falls back", func(t *testing.T) {
		events := []content.Event{
			{ID: "a", Stage: "origin"},
			{ID: "b", Stage: "origin", SimultaneousWith: []string{"ghost"}},
		}
		got := Allocate(events, config.DefaultStages(), "future")
		r := got["b"]
		if r.Start < 0 || r.End > 15 || r.End <= r.Start {
			t.Fatalf("expected valid range inside origin, got %v", r)
		}
	})

	t.Run("unresolved events split what is left", func(t *testing.T) {
		events := []content.Event{
			{ID: "c", Stage: "origin", SimultaneousWith: []string{"b"}},
			{ID: "b", Stage: "origin", SimultaneousWith: []string{"c"}},
		}
		got := Allocate(events, config.DefaultStages(), "future")
		if got["c"] != (Range{0, 7.5}) {
			t.Fatalf("expected c to take the first half, got %v", got["c"])
		}
		if got["b"] != got["c"] {
			t.Fatalf("expected b to follow c once c is placed, got %v", got["b"])
		}
	})

	t.Run("self reference falls back", func(t *testing.T) {
		events := []content.Event{{ID: "loop", Stage: "origin", SimultaneousWith: []string{"loop"}}}
		got := Allocate(events, config.DefaultStages(), "future")
		if got["loop"] != (Range{0, 15}) {
			t.Fatalf("expected whole stage, got %v", got["loop"])
		}
	})
}

func TestPlace(t *testing.T) {
	t.Run("unknown and empty stages use the default", func(t *testing.T) {
		events := []content.Event{
			{ID: "a", Stage: "nowhere"},
			{ID: "b"},
		}
		placements := Place(events, config.DefaultStages(), "future")
		for _, p := range placements {
			if p.Stage.Key != "future" {
				t.Fatalf("%s: expected future stage, got %q", p.Event.ID, p.Stage.Key)
			}
		}
		if placements[0].Range != (Range{90, 95}) || placements[1].Range != (Range{95, 100}) {
			t.Fatalf("unexpected ranges: %v %v", placements[0].Range, placements[1].Range)
		}
	})

	t.Run("fallback is last percent of stage", func(t *testing.T) {
		stage := config.Stage{Key: "s", PercentStart: 20, PercentEnd: 40}
		if got := Fallback(stage); got != (Range{39, 40}) {
			t.Fatalf("expected [39,40), got %v", got)
		}
	})
}

func TestInstant(t *testing.T) {
	epoch := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		pct  float64
		want string
	}{
		{0, "2020-01-01T00:00:00"},
		{5, "2020-01-06T00:00:00"},
		{0.5, "2020-01-01T12:00:00"},
		{100, "2020-04-10T00:00:00"},
		{1.0 / 3.0, "2020-01-01T08:00:00"},
		{0.000001, "2020-01-01T00:00:00.086400"},
	}
	for _, tc := range cases {
		if got := FormatInstant(Instant(epoch, tc.pct)); got != tc.want {
			t.Fatalf("pct %v: expected %s, got %s", tc.pct, tc.want, got)
		}
	}
}

func TestAllocateRepeatedID(t *testing.T) {
	events := []content.Event{
		{ID: "dup", Title: "first", Stage: "seismic"},
		{ID: "dup", Title: "second", Stage: "seismic"},
		{ID: "other", Stage: "seismic"},
	}
	stages := config.DefaultStages()

	got := Allocate(events, stages, "future")
	if got["dup"] != (Range{55, 62.5}) || got["other"] != (Range{62.5, 70}) {
		t.Fatalf("expected the stage split between dup and other, got %v", got)
	}

	placements := Place(events, stages, "future")
	if len(placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(placements))
	}
	if placements[0].Event.Title != "first" {
		t.Fatalf("expected the first dup to win, got %q", placements[0].Event.Title)
	}
}

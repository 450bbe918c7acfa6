package timeline

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosimple/slug"

	"micelio/internal/config"
	"micelio/internal/content"
)

const (
	TypePoint = "point"
	TypeRange = "range"
)

// Item is one event as consumed by the timeline widget.
type Item struct {
	ID           string  `json:"id"`
	Content      string  `json:"content"`
	Start        string  `json:"start"`
	End          string  `json:"end,omitempty"`
	Group        string  `json:"group"`
	Title        string  `json:"title"`
	ClassName    string  `json:"className"`
	Type         string  `json:"type"`
	Style        string  `json:"style"`
	StartPercent float64 `json:"start_percent"`
	EndPercent   float64 `json:"end_percent"`
}

type Group struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	ClassName string `json:"className"`
}

// VisualData is the complete timeline_visual_data.json document.
type VisualData struct {
	Items  []Item          `json:"items"`
	Groups []Group         `json:"groups"`
	Stages config.StageSet `json:"stages"`
	Epoch  string          `json:"epoch"`
	Labels []Label         `json:"labels"`
}

type Options struct {
	Epoch           time.Time
	ContentBudget   int
	PointKeywords   []string
	EmitEmptyGroups bool
	DefaultStage    string
	MinLabelSpacing float64
	LabelWrap       int
}

// OptionsFromConfig converts the timeline section of the project config.
func OptionsFromConfig(cfg config.TimelineConfig) (Options, error) {
	epoch, err := cfg.EpochTime()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Epoch:           epoch,
		ContentBudget:   cfg.ContentBudget,
		PointKeywords:   cfg.PointKeywords,
		EmitEmptyGroups: cfg.EmitEmptyGroups,
		DefaultStage:    cfg.DefaultStage,
		MinLabelSpacing: cfg.MinLabelSpacing,
		LabelWrap:       cfg.LabelWrap,
	}, nil
}

// Build allocates events and renders the widget document.
func Build(events []content.Event, stages config.StageSet, opts Options) VisualData {
	ordered := stages.Sorted()
	placements := Place(events, ordered, opts.DefaultStage)
	origin := ordered.Origin()

	used := make(map[string]bool)
	items := make([]Item, 0, len(placements))
	for _, p := range placements {
		used[p.Stage.Key] = true
		items = append(items, buildItem(p, origin, opts))
	}

	groups := make([]Group, 0, len(ordered))
	for _, stage := range ordered {
		if !opts.EmitEmptyGroups && !used[stage.Key] {
			continue
		}
		groups = append(groups, Group{
			ID:        stage.Key,
			Content:   stage.Name,
			ClassName: "timeline-group-" + slug.Make(stage.Key),
		})
	}

	return VisualData{
		Items:  items,
		Groups: groups,
		Stages: ordered,
		Epoch:  FormatInstant(opts.Epoch),
		Labels: LayoutLabels(placements, ordered, opts),
	}
}

func buildItem(p Placement, origin config.Stage, opts Options) Item {
	e := p.Event
	point := IsPoint(e, p.Stage, origin, opts.PointKeywords)
	item := Item{
		ID:           e.ID,
		Content:      Truncate(e.Title, opts.ContentBudget),
		Start:        FormatInstant(Instant(opts.Epoch, p.Range.Start)),
		Group:        p.Stage.Key,
		Title:        fmt.Sprintf("%s\n\n%s\n\nProgress: %.1f%% - %.1f%%", e.Title, e.Description, p.Range.Start, p.Range.End),
		ClassName:    "timeline-event-" + slug.Make(p.Stage.Key),
		Type:         TypeRange,
		Style:        fmt.Sprintf("background-color: %s; border-color: %s; color: #fff;", p.Stage.Color, p.Stage.Color),
		StartPercent: p.Range.Start,
		EndPercent:   p.Range.End,
	}
	if point {
		item.Type = TypePoint
	} else {
		item.End = FormatInstant(Instant(opts.Epoch, p.Range.End))
	}
	return item
}

// IsPoint reports whether an event renders as an instant: every origin
// stage event, and any event whose title contains a point keyword.
func IsPoint(e content.Event, stage, origin config.Stage, keywords []string) bool {
	if stage.Key == origin.Key {
		return true
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(e.Title, kw) {
			return true
		}
	}
	return false
}

// Truncate cuts s to budget runes and appends an ellipsis when it was longer.
func Truncate(s string, budget int) string {
	if budget <= 0 || utf8.RuneCountInString(s) <= budget {
		return s
	}
	runes := []rune(s)
	return string(runes[:budget]) + "..."
}

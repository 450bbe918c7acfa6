package timeline

import (
	"math"
	"strings"
	"unicode/utf8"

	"micelio/internal/config"
)

const (
	SideTop    = "top"
	SideBottom = "bottom"
)

// Label is the placement of one event caption in a rendered timeline.
// Level counts how many steps the label is pushed away from its stage bar.
type Label struct {
	ID    string   `json:"id"`
	Stage string   `json:"stage"`
	X     float64  `json:"x"`
	Side  string   `json:"side"`
	Level int      `json:"level"`
	Lines []string `json:"lines"`
}

// LayoutLabels positions captions per stage. Labels alternate top and
// bottom in input order; a label moves one level out for every earlier
// label of its stage on the same side closer than MinLabelSpacing.
func LayoutLabels(placements []Placement, stages config.StageSet, opts Options) []Label {
	byStage := make(map[string][]Placement)
	for _, p := range placements {
		byStage[p.Stage.Key] = append(byStage[p.Stage.Key], p)
	}

	labels := make([]Label, 0, len(placements))
	for _, stage := range stages.Sorted() {
		var placed []Label
		for i, p := range byStage[stage.Key] {
			label := Label{
				ID:    p.Event.ID,
				Stage: stage.Key,
				X:     (p.Range.Start + p.Range.End) / 2,
				Side:  SideTop,
				Lines: wrapText(strings.Fields(p.Event.Title), opts.LabelWrap),
			}
			if i%2 == 1 {
				label.Side = SideBottom
			}
			for _, prev := range placed {
				if prev.Side == label.Side && math.Abs(label.X-prev.X) < opts.MinLabelSpacing {
					label.Level++
				}
			}
			placed = append(placed, label)
		}
		labels = append(labels, placed...)
	}
	return labels
}

// wrapText greedily fills lines of at most maxWidth runes. A word longer
// than maxWidth gets a line of its own.
func wrapText(words []string, maxWidth int) []string {
	if len(words) == 0 {
		return []string{}
	}

	var lines []string
	var currentLine strings.Builder
	width := 0

	for _, word := range words {
		n := utf8.RuneCountInString(word)
		switch {
		case width == 0:
			currentLine.WriteString(word)
			width = n
		case maxWidth <= 0 || width+1+n <= maxWidth:
			currentLine.WriteString(" " + word)
			width += 1 + n
		default:
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
			width = n
		}
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return lines
}

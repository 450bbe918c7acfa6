package linker

import (
	"html"
	"strings"

	"micelio/internal/content"
)

const DefaultClass = "reference-link"

// Section returns the page anchor a marker of the given kind points to.
func Section(kind content.Kind) string {
	switch kind {
	case content.KindLocation:
		return "#locations"
	case content.KindSong:
		return "#songs"
	case content.KindPlot:
		return "#plots"
	default:
		return "#"
	}
}

// Marker renders one reference marker. An empty id degrades to the plain
// label.
func Marker(kind content.Kind, id, label, class string) string {
	if id == "" {
		return html.EscapeString(label)
	}
	if label == "" {
		label = id
	}
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(Section(kind))
	b.WriteString(`" class="`)
	b.WriteString(html.EscapeString(class))
	b.WriteString(`" data-kind="`)
	b.WriteString(string(kind))
	b.WriteString(`" data-id="`)
	b.WriteString(html.EscapeString(id))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(label))
	b.WriteString(`</a>`)
	return b.String()
}

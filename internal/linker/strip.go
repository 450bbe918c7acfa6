package linker

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkers returns the visible text of linked output, dropping every
// tag and decoding entities.
func StripMarkers(text string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// Package sanitize removes scraped markup from source content.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"

	"micelio/internal/content"
	"micelio/internal/linker"
)

// CleanText drops every tag, decodes entities and collapses whitespace.
// Values without anything that looks like a tag are returned unchanged.
func CleanText(text string) string {
	if !strings.Contains(text, "<") || !strings.Contains(text, ">") {
		return text
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
		}
	}
	return linker.StripCorrupt(b.String())
}

// Changes counts the rewritten fields per collection.
type Changes map[content.Kind]int

func (c Changes) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// CleanDataset cleans every text field of ds in place.
func CleanDataset(ds *content.Dataset) Changes {
	changes := make(Changes)
	ds.VisitText(func(f content.Field, value string) string {
		cleaned := CleanText(value)
		if cleaned != value {
			changes[f.Kind]++
		}
		return cleaned
	})
	return changes
}

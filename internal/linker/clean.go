package linker

import (
	"regexp"
	"strings"
)

var (
	// '); return false;"> left behind by a scraped onclick handler
	returnFalseResidue = regexp.MustCompile(`(?i)'\s*;\s*return\s+false\s*[^>]*>`)
	// { .; }, 300); left behind by a scraped setTimeout call
	timeoutResidue = regexp.MustCompile(`\{\s*\.\s*;\s*\}\s*,\s*\d+\s*\)\s*;`)
)

// StripCorrupt removes known script residue from text and collapses runs of
// whitespace to single spaces.
func StripCorrupt(text string) string {
	if text == "" {
		return text
	}
	text = returnFalseResidue.ReplaceAllString(text, "")
	text = timeoutResidue.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// HasMarkup reports whether text already carries anchors or spans.
func HasMarkup(text string) bool {
	return strings.Contains(text, "<a") || strings.Contains(text, "<span")
}

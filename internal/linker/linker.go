package linker

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"micelio/internal/content"
)

type candidate struct {
	kind    content.Kind
	id      string
	name    string
	pattern *regexp.Regexp
}

// Linker rewrites entity names in free text into reference markers.
// Candidates are tried in a fixed priority order: locations, characters,
// songs, plots, each group longest name first.
type Linker struct {
	candidates []candidate
	class      string
}

type Option func(*Linker)

// WithClass sets the CSS class carried by every marker.
func WithClass(class string) Option {
	return func(l *Linker) {
		if class != "" {
			l.class = class
		}
	}
}

type named struct {
	id      string
	name    string
	sortKey int
}

func New(locations []content.Location, characters []content.Character, songs []content.Song, plots []content.Plot, opts ...Option) *Linker {
	l := &Linker{class: DefaultClass}
	for _, opt := range opts {
		opt(l)
	}

	// a location contributes its full name and, when qualified, its base
	// name; the full name is always the longer of the two
	places := make([]named, 0, 2*len(locations))
	for _, loc := range locations {
		places = append(places, named{id: loc.ID, name: loc.Name, sortKey: runeLen(strings.TrimSpace(loc.Name))})
		if base := loc.BaseName(); base != "" {
			places = append(places, named{id: loc.ID, name: base, sortKey: runeLen(base)})
		}
	}
	l.addGroup(content.KindLocation, places)

	chars := make([]named, 0, len(characters))
	for _, c := range characters {
		chars = append(chars, named{id: c.ID, name: c.Name, sortKey: runeLen(c.Name)})
	}
	l.addGroup(content.KindCharacter, chars)

	titles := make([]named, 0, len(songs))
	for _, s := range songs {
		titles = append(titles, named{id: s.ID, name: s.Title, sortKey: runeLen(s.Title)})
	}
	l.addGroup(content.KindSong, titles)

	titles = make([]named, 0, len(plots))
	for _, p := range plots {
		titles = append(titles, named{id: p.ID, name: p.Title, sortKey: runeLen(p.Title)})
	}
	l.addGroup(content.KindPlot, titles)

	return l
}

func (l *Linker) addGroup(kind content.Kind, entries []named) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].sortKey > entries[j].sortKey })
	for _, e := range entries {
		l.add(kind, e.id, e.name)
	}
}

func (l *Linker) add(kind content.Kind, id, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	l.candidates = append(l.candidates, candidate{
		kind:    kind,
		id:      id,
		name:    name,
		pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(name)),
	})
}

// span is a claimed region of the cleaned text.
type span struct {
	start, end int
	c          *candidate
}

// Link returns text with every known name turned into a marker. Text that
// already carries markup is returned cleaned but otherwise unchanged.
func (l *Linker) Link(text string) string {
	if text == "" {
		return text
	}
	text = StripCorrupt(text)
	if HasMarkup(text) || len(l.candidates) == 0 {
		return text
	}

	var spans []span
	for i := range l.candidates {
		c := &l.candidates[i]
		for _, m := range findWholeWords(c.pattern, text) {
			spans = claim(spans, span{start: m[0], end: m[1], c: c})
		}
	}
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(spans)*96)
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.start])
		b.WriteString(Marker(s.c.kind, s.c.id, text[s.start:s.end], l.class))
		last = s.end
	}
	b.WriteString(text[last:])
	return b.String()
}

// claim inserts s into the ordered span list unless it overlaps a span that
// is already there.
func claim(spans []span, s span) []span {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].end > s.start })
	if i < len(spans) && spans[i].start < s.end {
		return spans
	}
	spans = append(spans, span{})
	copy(spans[i+1:], spans[i:])
	spans[i] = s
	return spans
}

// findWholeWords returns the byte ranges of every occurrence of re in text
// that is neither preceded nor followed by a word rune.
func findWholeWords(re *regexp.Regexp, text string) [][2]int {
	var out [][2]int
	pos := 0
	for pos <= len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start && wordBoundary(text, start, end) {
			out = append(out, [2]int{start, end})
			pos = end
			continue
		}
		// retry one rune further so overlapping occurrences are not lost
		_, size := utf8.DecodeRuneInString(text[start:])
		if size == 0 {
			break
		}
		pos = start + size
	}
	return out
}

func wordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

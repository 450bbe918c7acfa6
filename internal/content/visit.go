package content

// Field identifies one free-text value handed to a TextFunc.
type Field struct {
	Kind Kind
	ID   string
	Name string
	// Linkable marks prose that may carry reference markers. Display names,
	// titles and roles are visited but never linked.
	Linkable bool
}

// TextFunc returns the replacement for value.
type TextFunc func(f Field, value string) string

// VisitText calls fn for every free-text field of the dataset and stores
// the result back. Identifiers and cross-references are not visited.
// Unmodelled string fields of each record are visited last, never as
// linkable.
func (ds *Dataset) VisitText(fn TextFunc) {
	for i := range ds.Characters {
		c := &ds.Characters[i]
		field := func(name string, linkable bool) Field {
			return Field{Kind: KindCharacter, ID: c.ID, Name: name, Linkable: linkable}
		}
		c.Name = fn(field("name", false), c.Name)
		c.Role = fn(field("role", false), c.Role)
		c.Origin = fn(field("origin", true), c.Origin)
		c.Description = fn(field("description", true), c.Description)
		visitList(c.Motivations, field("motivations", true), fn)
		visitList(c.Skills, field("skills", true), fn)
		for j := range c.Relations {
			c.Relations[j].Type = fn(field("relations.type", false), c.Relations[j].Type)
		}
		c.Extra.visitStrings(field("", false), fn)
	}

	for i := range ds.Locations {
		l := &ds.Locations[i]
		field := func(name string, linkable bool) Field {
			return Field{Kind: KindLocation, ID: l.ID, Name: name, Linkable: linkable}
		}
		l.Name = fn(field("name", false), l.Name)
		l.Description = fn(field("description", true), l.Description)
		visitList(l.KeyElements, field("key_elements", true), fn)
		l.Extra.visitStrings(field("", false), fn)
	}

	for i := range ds.Songs {
		s := &ds.Songs[i]
		field := func(name string, linkable bool) Field {
			return Field{Kind: KindSong, ID: s.ID, Name: name, Linkable: linkable}
		}
		s.Title = fn(field("title", false), s.Title)
		s.Description = fn(field("description", true), s.Description)
		s.Meaning = fn(field("meaning", true), s.Meaning)
		visitList(s.Lyrics, field("lyrics", true), fn)
		s.Extra.visitStrings(field("", false), fn)
	}

	for i := range ds.Plots {
		p := &ds.Plots[i]
		p.Title = fn(Field{Kind: KindPlot, ID: p.ID, Name: "title"}, p.Title)
		p.Summary = fn(Field{Kind: KindPlot, ID: p.ID, Name: "summary", Linkable: true}, p.Summary)
		p.Extra.visitStrings(Field{Kind: KindPlot, ID: p.ID}, fn)
	}

	intro := &ds.Intro
	introField := func(name string, linkable bool) Field {
		return Field{Kind: KindIntro, Name: name, Linkable: linkable}
	}
	intro.Logline = fn(introField("logline", true), intro.Logline)
	intro.Synopsis = fn(introField("synopsis", true), intro.Synopsis)
	intro.Rationale = fn(introField("rationale", true), intro.Rationale)
	for j := range intro.Storyline {
		beat := &intro.Storyline[j]
		beat.Title = fn(introField("storyline.title", false), beat.Title)
		beat.Summary = fn(introField("storyline.summary", true), beat.Summary)
	}
	intro.Extra.visitStrings(introField("", false), fn)

	for i := range ds.Timeline {
		e := &ds.Timeline[i]
		e.Title = fn(Field{Kind: KindEvent, ID: e.ID, Name: "title"}, e.Title)
		e.Description = fn(Field{Kind: KindEvent, ID: e.ID, Name: "description", Linkable: true}, e.Description)
		e.Extra.visitStrings(Field{Kind: KindEvent, ID: e.ID}, fn)
	}
}

func visitList(values []string, f Field, fn TextFunc) {
	for i := range values {
		values[i] = fn(f, values[i])
	}
}

// Clone returns a deep copy so callers can rewrite text without touching
// the source snapshot. Extra values are shared; VisitText never writes
// into them.
func (ds *Dataset) Clone() *Dataset {
	out := &Dataset{
		Characters: make([]Character, len(ds.Characters)),
		Locations:  make([]Location, len(ds.Locations)),
		Songs:      make([]Song, len(ds.Songs)),
		Plots:      make([]Plot, len(ds.Plots)),
		Timeline:   make([]Event, len(ds.Timeline)),
	}
	for i, c := range ds.Characters {
		c.Motivations = cloneStrings(c.Motivations)
		c.Skills = cloneStrings(c.Skills)
		c.Relations = append([]Relation(nil), c.Relations...)
		c.Tags = cloneStrings(c.Tags)
		out.Characters[i] = c
	}
	for i, l := range ds.Locations {
		l.KeyElements = cloneStrings(l.KeyElements)
		out.Locations[i] = l
	}
	for i, s := range ds.Songs {
		s.Lyrics = cloneStrings(s.Lyrics)
		out.Songs[i] = s
	}
	copy(out.Plots, ds.Plots)
	for i, e := range ds.Timeline {
		e.SimultaneousWith = cloneStrings(e.SimultaneousWith)
		out.Timeline[i] = e
	}
	out.Intro = ds.Intro
	out.Intro.Storyline = append([]StoryBeat(nil), ds.Intro.Storyline...)
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

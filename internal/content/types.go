package content

import "strings"

type Relation struct {
	Target string `json:"target"`
	Type   string `json:"type"`

	Extra Extra `json:"-"`
}

type Character struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Role        string     `json:"role,omitempty"`
	Origin      string     `json:"origin,omitempty"`
	Description string     `json:"description,omitempty"`
	Motivations []string   `json:"motivations,omitempty"`
	Skills      []string   `json:"skills,omitempty"`
	Relations   []Relation `json:"relations,omitempty"`
	Tags        []string   `json:"tags,omitempty"`

	Extra Extra `json:"-"`
}

func (c Character) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type Location struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	KeyElements []string `json:"key_elements,omitempty"`

	Extra Extra `json:"-"`
}

// BaseName returns the name without a trailing parenthetical qualifier,
// e.g. "Red Tower" for "Red Tower (ruins)". It is empty when the name has
// no qualifier.
func (l Location) BaseName() string {
	i := strings.Index(l.Name, "(")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(l.Name[:i])
}

type Song struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Meaning     string   `json:"meaning,omitempty"`
	Lyrics      []string `json:"lyrics,omitempty"`

	Extra Extra `json:"-"`
}

type Plot struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`

	Extra Extra `json:"-"`
}

type StoryBeat struct {
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`

	Extra Extra `json:"-"`
}

type Intro struct {
	Logline   string      `json:"logline,omitempty"`
	Synopsis  string      `json:"synopsis,omitempty"`
	Rationale string      `json:"rationale,omitempty"`
	Storyline []StoryBeat `json:"storyline,omitempty"`

	Extra Extra `json:"-"`
}

type Event struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Stage            string   `json:"stage,omitempty"`
	SimultaneousWith []string `json:"simultaneous_with,omitempty"`

	Extra Extra `json:"-"`
}

// Dataset is one snapshot of every content collection.
type Dataset struct {
	Characters []Character
	Locations  []Location
	Songs      []Song
	Plots      []Plot
	Intro      Intro
	Timeline   []Event
}

// Kind names a content collection.
type Kind string

const (
	KindCharacter Kind = "character"
	KindLocation  Kind = "location"
	KindSong      Kind = "song"
	KindPlot      Kind = "plot"
	KindIntro     Kind = "intro"
	KindEvent     Kind = "event"
)

var Kinds = []Kind{KindCharacter, KindLocation, KindSong, KindPlot, KindIntro, KindEvent}

func (k Kind) Valid() bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (r *Relation) UnmarshalJSON(data []byte) error {
	type plain Relation
	var v plain
	extra, err := decodeRecord(data, &v)
	if err != nil {
		return err
	}
	*r = Relation(v)
	r.Extra = extra
	return nil
}

func (r Relation) MarshalJSON() ([]byte, error) {
	type plain Relation
	return encodeRecord(plain(r), r.Extra)
}

func (c *Character) UnmarshalJSON(data []byte) error {
	type plain Character
	var v plain
	extra, err := decodeRecord(data, &v)
	if err != nil {
		return err
	}
	*c = Character(v)
	c.Extra = extra
	return nil
}

func (c Character) MarshalJSON() ([]byte, error) {
	type plain Character
	return encodeRecord(plain(c), c.Extra)
}

func (l *Location) UnmarshalJSON(data []byte) error {
	type plain Location
	var v plain
	extra, err := decodeRecord(data, &v)
	if err != nil {
		return err
	}
	*l = Location(v)
	l.Extra = extra
	return nil
}

func (l Location) MarshalJSON() ([]byte, error) {
	type plain Location
	return encodeRecord(plain(l), l.Extra)
}

func (s *Song) UnmarshalJSON(data []byte) error {
	type plain Song
	var v plain
	extra, err := decodeRecord(data, &v)
	if err != nil {
		return err
	}
	*s = Song(v)
	s.Extra = extra
	return nil
}

func (s Song) MarshalJSON() ([]byte, error) {
	type plain Song
	return encodeRecord(plain(s), s.Extra)
}

func (p *Plot) UnmarshalJSON(data []byte) error {
	type plain Plot
	var v plain
	extra, err := decodeRecord(data, &v)
	if err != nil {
		return err
	}
	*p = Plot(v)
	p.Extra = extra
	return nil
}

func (p Plot) MarshalJSON() ([]byte, error) {
	type plain Plot
	return encodeRecord(plain(p), p.Extra)
}

func (s *StoryBeat) UnmarshalJSON(data []byte) error {
	type plain StoryBeat
	var v plain
	extra, err := decodeRecord(data, &v)
	if err != nil {
		return err
	}
	*s = StoryBeat(v)
	s.Extra = extra
	return nil
}

func (s StoryBeat) MarshalJSON() ([]byte, error) {
	type plain StoryBeat
	return encodeRecord(plain(s), s.Extra)
}

func (i *Intro) UnmarshalJSON(data []byte) error {
	type plain Intro
	var v plain
	extra, err := decodeRecord(data, &v)
	if err != nil {
		return err
	}
	*i = Intro(v)
	i.Extra = extra
	return nil
}

func (i Intro) MarshalJSON() ([]byte, error) {
	type plain Intro
	return encodeRecord(plain(i), i.Extra)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var v plain
	extra, err := decodeRecord(data, &v)
	if err != nil {
		return err
	}
	*e = Event(v)
	e.Extra = extra
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	return encodeRecord(plain(e), e.Extra)
}

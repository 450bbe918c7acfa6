package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotIndexed is returned when a relation names an entity that has not
// been upserted.
var ErrNotIndexed = errors.New("entity not indexed")

type EntityInput struct {
	ID         string
	Kind       string
	Name       string
	SourceFile string
	SourceHash string
	Properties map[string]any
	Tags       []string
	Body       string
}

type Entity struct {
	ID         string
	Kind       string
	Name       string
	SourceFile string
	SourceHash string
	Tags       []string
	Properties map[string]any
	Body       string
}

type EntitySummary struct {
	ID   string
	Kind string
	Name string
	Tags []string
}

type EntityRef struct {
	Kind string
	ID   string
	Name string
}

type Relation struct {
	From      EntityRef
	To        EntityRef
	Type      string
	Direction string
}

type SearchResult struct {
	ID      string
	Kind    string
	Name    string
	Tags    []string
	Score   float64
	Snippet string
}

const (
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
	DirectionBoth     = "both"
)

// NormalizeDirection defaults an empty direction to both and rejects
// anything else that is not a known direction.
func NormalizeDirection(direction string) (string, error) {
	direction = strings.TrimSpace(direction)
	switch direction {
	case "":
		return DirectionBoth, nil
	case DirectionOutgoing, DirectionIncoming, DirectionBoth:
		return direction, nil
	default:
		return "", fmt.Errorf("invalid direction: %s", direction)
	}
}

package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"micelio/internal/config"
	"micelio/internal/content"
	"micelio/internal/linker"
	"micelio/internal/store"
	"micelio/internal/timeline"
)

// Store is the part of store.Store the indexer writes through.
type Store interface {
	EnsureSchema(ctx context.Context) error
	UpsertEntity(ctx context.Context, e store.EntityInput) error
	GetKindHashes(ctx context.Context, kind string) (map[string]string, error)
	RemoveStaleEntities(ctx context.Context, kind string, keep []string) (int64, error)
	ClearRelations(ctx context.Context, from store.EntityRef) error
	UpsertRelation(ctx context.Context, from, to store.EntityRef, relType string) error
}

const (
	RelRelatedTo        = "RELATED_TO"
	RelSimultaneousWith = "SIMULTANEOUS_WITH"

	// IntroID is the entity id the single intro document is indexed under.
	IntroID = "intro"
)

type Result struct {
	EntitiesUpserted  int
	EntitiesSkipped   int
	EntitiesRemoved   int
	RelationsUpserted int
	Errors            []error
}

type Options struct {
	// Full re-upserts every entity even when its hash is unchanged.
	Full         bool
	Files        config.FilesConfig
	Stages       config.StageSet
	DefaultStage string
	LinkClass    string
}

type edge struct {
	to      store.EntityRef
	relType string
}

type document struct {
	input store.EntityInput
	edges []edge
}

func (d document) ref() store.EntityRef {
	return store.EntityRef{Kind: d.input.Kind, ID: d.input.ID, Name: d.input.Name}
}

// Run indexes ds into db. Per-entity failures are collected in the result;
// only schema and hash lookups abort the run.
func Run(ctx context.Context, ds *content.Dataset, db Store, options Options) (*Result, error) {
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	docs, err := buildDocuments(ds, options)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	byKind := make(map[content.Kind][]document)
	for _, d := range docs {
		kind := content.Kind(d.input.Kind)
		byKind[kind] = append(byKind[kind], d)
	}

	for _, kind := range content.Kinds {
		var existing map[string]string
		if !options.Full {
			existing, err = db.GetKindHashes(ctx, string(kind))
			if err != nil {
				return nil, fmt.Errorf("get hashes for %s: %w", kind, err)
			}
		}

		for _, d := range byKind[kind] {
			if !options.Full && existing[d.input.ID] == d.input.SourceHash {
				result.EntitiesSkipped++
				continue
			}
			if err := db.UpsertEntity(ctx, d.input); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("upserting %s/%s: %w", kind, d.input.ID, err))
				continue
			}
			result.EntitiesUpserted++
		}
	}

	// relations are rebuilt for every document; a skipped entity may point
	// at one that was re-created
	for _, d := range docs {
		from := d.ref()
		if err := db.ClearRelations(ctx, from); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		for _, e := range d.edges {
			if err := db.UpsertRelation(ctx, from, e.to, e.relType); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("relating %s/%s: %w", from.Kind, from.ID, err))
				continue
			}
			result.RelationsUpserted++
		}
	}

	for _, kind := range content.Kinds {
		keep := make([]string, 0, len(byKind[kind]))
		for _, d := range byKind[kind] {
			keep = append(keep, d.input.ID)
		}
		removed, err := db.RemoveStaleEntities(ctx, string(kind), keep)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("removing stale %s entities: %w", kind, err))
			continue
		}
		result.EntitiesRemoved += int(removed)
	}

	return result, nil
}

func buildDocuments(ds *content.Dataset, options Options) ([]document, error) {
	linked := linker.LinkDataset(ds, linker.ForDataset(ds, linker.WithClass(options.LinkClass)))
	bodies := plainBodies(ds)

	characterIDs := make(map[string]bool, len(ds.Characters))
	for _, c := range ds.Characters {
		characterIDs[c.ID] = true
	}
	eventIDs := make(map[string]bool, len(ds.Timeline))
	for _, e := range ds.Timeline {
		eventIDs[e.ID] = true
	}

	var docs []document
	add := func(kind content.Kind, id, name, file string, tags []string, value any, extra map[string]any, edges []edge) error {
		props, err := properties(value, extra)
		if err != nil {
			return fmt.Errorf("building properties for %s/%s: %w", kind, id, err)
		}
		input := store.EntityInput{
			ID:         id,
			Kind:       string(kind),
			Name:       name,
			SourceFile: file,
			Properties: props,
			Tags:       tags,
			Body:       bodies[bodyKey(kind, id)],
		}
		input.SourceHash, err = hashInput(input)
		if err != nil {
			return fmt.Errorf("hashing %s/%s: %w", kind, id, err)
		}
		docs = append(docs, document{input: input, edges: edges})
		return nil
	}

	for i, c := range ds.Characters {
		var edges []edge
		for _, r := range c.Relations {
			if !characterIDs[r.Target] {
				continue
			}
			relType := strings.TrimSpace(r.Type)
			if relType == "" {
				relType = RelRelatedTo
			}
			edges = append(edges, edge{
				to:      store.EntityRef{Kind: string(content.KindCharacter), ID: r.Target},
				relType: relType,
			})
		}
		err := add(content.KindCharacter, c.ID, c.Name, options.Files.Characters, c.Tags, linked.Characters[i], nil, edges)
		if err != nil {
			return nil, err
		}
	}

	for i, l := range ds.Locations {
		if err := add(content.KindLocation, l.ID, l.Name, options.Files.Locations, nil, linked.Locations[i], nil, nil); err != nil {
			return nil, err
		}
	}

	for i, s := range ds.Songs {
		if err := add(content.KindSong, s.ID, s.Title, options.Files.Songs, nil, linked.Songs[i], nil, nil); err != nil {
			return nil, err
		}
	}

	for i, p := range ds.Plots {
		if err := add(content.KindPlot, p.ID, p.Title, options.Files.Plots, nil, linked.Plots[i], nil, nil); err != nil {
			return nil, err
		}
	}

	if !isEmptyIntro(ds.Intro) {
		name := ds.Intro.Logline
		if name == "" {
			name = "Intro"
		}
		if err := add(content.KindIntro, IntroID, name, options.Files.Intro, nil, linked.Intro, nil, nil); err != nil {
			return nil, err
		}
	}

	linkedEvents := make(map[string]content.Event, len(linked.Timeline))
	for _, e := range timeline.Unique(linked.Timeline) {
		linkedEvents[e.ID] = e
	}
	placements := timeline.Place(ds.Timeline, options.Stages, options.DefaultStage)
	for _, p := range placements {
		var edges []edge
		for _, ref := range p.Event.SimultaneousWith {
			if ref == p.Event.ID || !eventIDs[ref] {
				continue
			}
			edges = append(edges, edge{
				to:      store.EntityRef{Kind: string(content.KindEvent), ID: ref},
				relType: RelSimultaneousWith,
			})
		}
		extra := map[string]any{
			"stage":         p.Stage.Key,
			"stage_name":    p.Stage.Name,
			"start_percent": p.Range.Start,
			"end_percent":   p.Range.End,
		}
		err := add(content.KindEvent, p.Event.ID, p.Event.Title, options.Files.Timeline, []string{p.Stage.Key}, linkedEvents[p.Event.ID], extra, edges)
		if err != nil {
			return nil, err
		}
	}

	return docs, nil
}

func bodyKey(kind content.Kind, id string) string {
	if kind == content.KindIntro {
		id = IntroID
	}
	return string(kind) + "/" + id
}

// plainBodies gathers the searchable prose of every entity, free of markup.
func plainBodies(ds *content.Dataset) map[string]string {
	parts := make(map[string][]string)
	ds.VisitText(func(f content.Field, value string) string {
		if f.Linkable && strings.TrimSpace(value) != "" {
			key := bodyKey(f.Kind, f.ID)
			parts[key] = append(parts[key], linker.StripMarkers(value))
		}
		return value
	})

	bodies := make(map[string]string, len(parts))
	for key, values := range parts {
		bodies[key] = strings.Join(values, "\n\n")
	}
	return bodies
}

// properties flattens v to a JSON object and drops the fields already
// stored as columns.
func properties(v any, extra map[string]any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	props := make(map[string]any)
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, err
	}
	for _, column := range []string{"id", "name", "title", "tags"} {
		delete(props, column)
	}
	for key, value := range extra {
		props[key] = value
	}
	return props, nil
}

func hashInput(input store.EntityInput) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func isEmptyIntro(intro content.Intro) bool {
	return intro.Logline == "" && intro.Synopsis == "" && intro.Rationale == "" && len(intro.Storyline) == 0
}

package mcp

import (
	"context"
	"errors"
	"testing"

	"micelio/internal/config"
	"micelio/internal/store"
)

type mockQuerier struct {
	entityResult    *store.Entity
	entityErr       error
	searchResult    []store.SearchResult
	searchErr       error
	listResult      []store.EntitySummary
	listErr         error
	relationsResult []store.Relation
	relationsErr    error

	lastGetKind      string
	lastGetID        string
	lastSearchQuery  string
	lastSearchKind   string
	lastListKind     string
	lastListTag      string
	lastRelationsRef store.EntityRef
	lastRelationsDir string
}

func (m *mockQuerier) GetEntity(ctx context.Context, kind, id string) (*store.Entity, error) {
	m.lastGetKind = kind
	m.lastGetID = id
	return m.entityResult, m.entityErr
}

func (m *mockQuerier) ListEntities(ctx context.Context, kind, tag string) ([]store.EntitySummary, error) {
	m.lastListKind = kind
	m.lastListTag = tag
	return m.listResult, m.listErr
}

func (m *mockQuerier) Search(ctx context.Context, query, kind string) ([]store.SearchResult, error) {
	m.lastSearchQuery = query
	m.lastSearchKind = kind
	return m.searchResult, m.searchErr
}

func (m *mockQuerier) GetRelations(ctx context.Context, ref store.EntityRef, direction string) ([]store.Relation, error) {
	m.lastRelationsRef = ref
	m.lastRelationsDir = direction
	return m.relationsResult, m.relationsErr
}

func TestGetEntity(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := &mockQuerier{entityResult: &store.Entity{
			ID: "tamen", Kind: "character", Name: "Tamen",
			Tags:       []string{"cosmic"},
			Properties: map[string]any{"role": "Voz del bosque"},
		}}
		server := NewServer(config.DefaultStages(), db, "test")

		_, output, err := server.handleGetEntity(context.Background(), nil, GetEntityInput{Kind: "character", ID: "tamen"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.Name != "Tamen" || output.Properties["role"] != "Voz del bosque" {
			t.Fatalf("unexpected entity output: %+v", output)
		}
		if db.lastGetKind != "character" || db.lastGetID != "tamen" {
			t.Fatalf("unexpected get params")
		}
	})

	t.Run("not found", func(t *testing.T) {
		server := NewServer(config.DefaultStages(), &mockQuerier{}, "test")

		_, _, err := server.handleGetEntity(context.Background(), nil, GetEntityInput{Kind: "song", ID: "missing"})
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		db := &mockQuerier{}
		server := NewServer(config.DefaultStages(), db, "test")

		_, _, err := server.handleGetEntity(context.Background(), nil, GetEntityInput{Kind: "npc", ID: "x"})
		if err == nil {
			t.Fatalf("expected error")
		}
		if db.lastGetKind != "" {
			t.Fatalf("expected store not to be queried")
		}
	})
}

func TestSearchContent(t *testing.T) {
	db := &mockQuerier{
		searchResult: []store.SearchResult{
			{ID: "torre-roja", Kind: "location", Name: "Torre Roja (ruinas)", Score: 1.5, Snippet: "**Torre** Roja"},
		},
	}
	server := NewServer(config.DefaultStages(), db, "test")

	_, output, err := server.handleSearchContent(context.Background(), nil, SearchContentInput{Query: "torre", Kind: "location"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Results) != 1 || output.Results[0].ID != "torre-roja" {
		t.Fatalf("unexpected search output: %+v", output)
	}
	if output.Results[0].Tags == nil {
		t.Fatalf("expected empty tags, got nil")
	}
	if db.lastSearchQuery != "torre" || db.lastSearchKind != "location" {
		t.Fatalf("unexpected search params")
	}

	if _, _, err := server.handleSearchContent(context.Background(), nil, SearchContentInput{}); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestListEntities(t *testing.T) {
	db := &mockQuerier{
		listResult: []store.EntitySummary{{ID: "sismico", Kind: "character", Name: "Sísmico", Tags: []string{"antagonist"}}},
	}
	server := NewServer(config.DefaultStages(), db, "test")

	_, output, err := server.handleListEntities(context.Background(), nil, ListEntitiesInput{Kind: "character", Tag: "antagonist"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Entities) != 1 || output.Entities[0].ID != "sismico" {
		t.Fatalf("unexpected list output: %+v", output)
	}
	if db.lastListKind != "character" || db.lastListTag != "antagonist" {
		t.Fatalf("unexpected list params")
	}
}

func TestGetRelations(t *testing.T) {
	db := &mockQuerier{
		relationsResult: []store.Relation{{
			From:      store.EntityRef{Kind: "event", ID: "echo", Name: "Eco"},
			To:        store.EntityRef{Kind: "event", ID: "signal", Name: "La Señal"},
			Type:      "SIMULTANEOUS_WITH",
			Direction: store.DirectionOutgoing,
		}},
	}
	server := NewServer(config.DefaultStages(), db, "test")

	_, output, err := server.handleGetRelations(context.Background(), nil, GetRelationsInput{Kind: "event", ID: "echo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Relations) != 1 || output.Relations[0].To.ID != "signal" {
		t.Fatalf("unexpected relations output: %+v", output)
	}
	if db.lastRelationsDir != store.DirectionBoth || db.lastRelationsRef.ID != "echo" {
		t.Fatalf("expected default direction both, got %q", db.lastRelationsDir)
	}

	if _, _, err := server.handleGetRelations(context.Background(), nil, GetRelationsInput{Kind: "event", ID: "echo", Direction: "sideways"}); err == nil {
		t.Fatalf("expected error for invalid direction")
	}

	db.relationsErr = errors.New("boom")
	if _, _, err := server.handleGetRelations(context.Background(), nil, GetRelationsInput{Kind: "event", ID: "echo"}); err == nil {
		t.Fatalf("expected store error to surface")
	}
}

func TestGetStages(t *testing.T) {
	stages := config.DefaultStages()
	stages[0], stages[5] = stages[5], stages[0]
	server := NewServer(stages, &mockQuerier{}, "test")

	_, output, err := server.handleGetStages(context.Background(), nil, GetStagesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Stages) != 6 {
		t.Fatalf("expected 6 stages, got %d", len(output.Stages))
	}
	if output.Stages[0].Key != "origin" || output.Stages[5].Key != "future" {
		t.Fatalf("expected stages in order, got %s..%s", output.Stages[0].Key, output.Stages[5].Key)
	}
}

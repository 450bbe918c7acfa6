package sqlite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"micelio/internal/store"
)

func newMemoryClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	client, err := New(ctx, "sqlite://:memory:")
	if err != nil {
		t.Fatalf("unexpected error opening database: %v", err)
	}
	t.Cleanup(func() { client.Close(ctx) })

	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("unexpected error ensuring schema: %v", err)
	}
	return client
}

func seed(t *testing.T, client *Client) {
	t.Helper()
	ctx := context.Background()
	inputs := []store.EntityInput{
		{
			ID: "vaquero-atomico", Kind: "character", Name: "Vaquero Atomico",
			SourceFile: "characters.json", SourceHash: "h1",
			Tags: []string{"protagonist"}, Body: "Rides across the desert with a radio",
			Properties: map[string]any{"role": "hero"},
		},
		{
			ID: "sismico", Kind: "character", Name: "Sismico",
			SourceFile: "characters.json", SourceHash: "h2",
			Tags: []string{"antagonist"}, Body: "Shakes the ground beneath the towers",
		},
		{
			ID: "torre-roja", Kind: "location", Name: "Torre Roja (ruinas)",
			SourceFile: "locations.json", SourceHash: "h3",
			Body: "A broken radio tower",
		},
	}
	for _, in := range inputs {
		if err := client.UpsertEntity(ctx, in); err != nil {
			t.Fatalf("unexpected error upserting %s: %v", in.ID, err)
		}
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	client := newMemoryClient(t)
	if err := client.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("expected second EnsureSchema to succeed, got %v", err)
	}
}

func TestSplitStatementsKeepsTriggerBodies(t *testing.T) {
	var triggers int
	for _, stmt := range splitStatements(ddl) {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TRIGGER") {
			triggers++
			if !strings.Contains(strings.ToUpper(stmt), "END;") {
				t.Fatalf("expected trigger statement to include END, got %q", stmt)
			}
		}
	}
	if triggers != 3 {
		t.Fatalf("expected 3 trigger statements, got %d", triggers)
	}
}

func TestEntityRoundTrip(t *testing.T) {
	client := newMemoryClient(t)
	seed(t, client)
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		e, err := client.GetEntity(ctx, "character", "vaquero-atomico")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e == nil {
			t.Fatalf("expected entity, got nil")
		}
		if e.Name != "Vaquero Atomico" || e.Properties["role"] != "hero" {
			t.Fatalf("unexpected entity: %+v", e)
		}
		if len(e.Tags) != 1 || e.Tags[0] != "protagonist" {
			t.Fatalf("expected tags [protagonist], got %v", e.Tags)
		}
	})

	t.Run("missing", func(t *testing.T) {
		e, err := client.GetEntity(ctx, "song", "nope")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e != nil {
			t.Fatalf("expected nil entity, got %+v", e)
		}
	})

	t.Run("list by kind and tag", func(t *testing.T) {
		all, err := client.ListEntities(ctx, "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 entities, got %d", len(all))
		}
		chars, err := client.ListEntities(ctx, "character", "Antagonist")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chars) != 1 || chars[0].ID != "sismico" {
			t.Fatalf("expected only sismico, got %+v", chars)
		}
	})

	t.Run("hashes", func(t *testing.T) {
		hashes, err := client.GetKindHashes(ctx, "character")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hashes["vaquero-atomico"] != "h1" || hashes["sismico"] != "h2" || len(hashes) != 2 {
			t.Fatalf("unexpected hashes: %v", hashes)
		}
	})
}

func TestSearch(t *testing.T) {
	client := newMemoryClient(t)
	seed(t, client)
	ctx := context.Background()

	results, err := client.Search(ctx, "radio", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	results, err = client.Search(ctx, "radio", "location")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "torre-roja" {
		t.Fatalf("expected torre-roja, got %+v", results)
	}

	err = client.UpsertEntity(ctx, store.EntityInput{
		ID: "torre-roja", Kind: "location", Name: "Torre Roja", Body: "Rubble only",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results, err = client.Search(ctx, "tower", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected updated body to drop out of the index, got %+v", results)
	}

	if _, err := client.Search(ctx, "  ", ""); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestRelations(t *testing.T) {
	client := newMemoryClient(t)
	seed(t, client)
	ctx := context.Background()

	vaquero := store.EntityRef{Kind: "character", ID: "vaquero-atomico"}
	sismico := store.EntityRef{Kind: "character", ID: "sismico"}

	if err := client.UpsertRelation(ctx, vaquero, sismico, "rival"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.UpsertRelation(ctx, vaquero, sismico, "rival"); err != nil {
		t.Fatalf("expected duplicate relation to be ignored, got %v", err)
	}

	out, err := client.GetRelations(ctx, vaquero, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Direction != store.DirectionOutgoing || out[0].To.Name != "Sismico" {
		t.Fatalf("unexpected relations: %+v", out)
	}

	in, err := client.GetRelations(ctx, sismico, store.DirectionIncoming)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(in) != 1 || in[0].Direction != store.DirectionIncoming {
		t.Fatalf("unexpected incoming relations: %+v", in)
	}

	missing := store.EntityRef{Kind: "character", ID: "ghost"}
	if err := client.UpsertRelation(ctx, vaquero, missing, "rival"); !errors.Is(err, store.ErrNotIndexed) {
		t.Fatalf("expected ErrNotIndexed, got %v", err)
	}

	if err := client.ClearRelations(ctx, vaquero); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err = client.GetRelations(ctx, vaquero, store.DirectionBoth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no relations after clear, got %+v", out)
	}
}

func TestRemoveStaleEntities(t *testing.T) {
	client := newMemoryClient(t)
	seed(t, client)
	ctx := context.Background()

	vaquero := store.EntityRef{Kind: "character", ID: "vaquero-atomico"}
	sismico := store.EntityRef{Kind: "character", ID: "sismico"}
	if err := client.UpsertRelation(ctx, vaquero, sismico, "rival"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := client.RemoveStaleEntities(ctx, "character", []string{"vaquero-atomico"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	rels, err := client.GetRelations(ctx, vaquero, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rels) != 0 {
		t.Fatalf("expected relations to cascade, got %+v", rels)
	}

	removed, err = client.RemoveStaleEntities(ctx, "location", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected empty keep list to clear the kind, got %d", removed)
	}
}

func TestRunSQL(t *testing.T) {
	client := newMemoryClient(t)
	seed(t, client)
	ctx := context.Background()

	t.Run("positional", func(t *testing.T) {
		rows, err := client.RunSQL(ctx,
			"SELECT entity_id FROM entities WHERE kind = ? ORDER BY entity_id",
			map[string]any{"1": "character"},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 || rows[0]["entity_id"] != "sismico" {
			t.Fatalf("unexpected rows: %+v", rows)
		}
	})

	t.Run("named", func(t *testing.T) {
		rows, err := client.RunSQL(ctx,
			"SELECT entity_id FROM entities WHERE name = :name",
			map[string]any{"name": "Sismico"},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 1 || rows[0]["entity_id"] != "sismico" {
			t.Fatalf("unexpected rows: %+v", rows)
		}
	})
}

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"micelio/internal/config"
	"micelio/internal/content"
	"micelio/internal/network"
	"micelio/internal/timeline"
)

var fixtureDir = filepath.Join("..", "content", "testdata", "data")

func testEnv(t *testing.T, dataDir string) *Env {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = dataDir
	cfg.OutputDir = t.TempDir()
	return &Env{
		Config: cfg,
		Log:    zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
	}
}

func TestRunDefaultSteps(t *testing.T) {
	env := testEnv(t, fixtureDir)

	result := Run(context.Background(), env, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Succeeded) != 3 || result.Total() != 3 {
		t.Fatalf("expected 3/3 steps, got %v failed %v", result.Succeeded, result.Failed)
	}

	for _, name := range []string{
		"characters_linked.json",
		"locations_linked.json",
		"songs_linked.json",
		"plots_linked.json",
		"intro_linked.json",
		"timeline_linked.json",
		NetworkFile,
		TimelineFile,
	} {
		if _, err := os.Stat(filepath.Join(env.Config.OutputDir, name)); err != nil {
			t.Fatalf("expected output %s: %v", name, err)
		}
	}

	t.Run("linked characters", func(t *testing.T) {
		var characters []content.Character
		if err := content.ReadJSON(filepath.Join(env.Config.OutputDir, "characters_linked.json"), &characters); err != nil {
			t.Fatalf("reading linked characters: %v", err)
		}
		if !strings.Contains(characters[0].Description, `class="reference-link"`) {
			t.Fatalf("expected reference markers, got %q", characters[0].Description)
		}
	})

	t.Run("network", func(t *testing.T) {
		var graph network.Graph
		if err := content.ReadJSON(filepath.Join(env.Config.OutputDir, NetworkFile), &graph); err != nil {
			t.Fatalf("reading network: %v", err)
		}
		if len(graph.Nodes) != 2 || len(graph.Edges) != 2 {
			t.Fatalf("expected 2 nodes and 2 edges, got %d and %d", len(graph.Nodes), len(graph.Edges))
		}
	})

	t.Run("timeline", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(env.Config.OutputDir, TimelineFile))
		if err != nil {
			t.Fatalf("reading timeline: %v", err)
		}
		var visual timeline.VisualData
		if err := json.Unmarshal(data, &visual); err != nil {
			t.Fatalf("decoding timeline: %v", err)
		}
		if len(visual.Items) != 5 {
			t.Fatalf("expected 5 items, got %d", len(visual.Items))
		}
		if len(visual.Groups) != len(env.Config.Timeline.Stages) {
			t.Fatalf("expected a group per stage, got %d", len(visual.Groups))
		}
	})
}

func TestRunContinuesAfterFailure(t *testing.T) {
	dataDir := t.TempDir()
	characters, err := os.ReadFile(filepath.Join(fixtureDir, "characters.json"))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "characters.json"), characters, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	env := testEnv(t, dataDir)

	result := Run(context.Background(), env, nil)
	if len(result.Succeeded) != 1 || result.Succeeded[0] != StepNetwork {
		t.Fatalf("expected only network to succeed, got %v", result.Succeeded)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("expected 2 failures, got %v", result.Failed)
	}
	if errs := multierr.Errors(result.Err); len(errs) != 2 {
		t.Fatalf("expected 2 combined errors, got %v", result.Err)
	}
	if !errors.Is(result.Err, os.ErrNotExist) {
		t.Fatalf("expected missing file error, got %v", result.Err)
	}
}

func TestRunMalformedInput(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataDir, "timeline.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	env := testEnv(t, dataDir)

	result := Run(context.Background(), env, []string{StepTimeline})
	if !errors.Is(result.Err, content.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", result.Err)
	}
}

func TestRunUnknownStep(t *testing.T) {
	env := testEnv(t, fixtureDir)

	result := Run(context.Background(), env, []string{"render", StepNetwork})
	if !errors.Is(result.Err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", result.Err)
	}
	if len(result.Succeeded) != 1 {
		t.Fatalf("expected network to still run, got %v", result.Succeeded)
	}
}

func TestRunIndexWithoutStore(t *testing.T) {
	env := testEnv(t, fixtureDir)

	result := Run(context.Background(), env, []string{StepIndex})
	if !errors.Is(result.Err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", result.Err)
	}
}

func TestRunCancelled(t *testing.T) {
	env := testEnv(t, fixtureDir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Run(ctx, env, nil)
	if len(result.Failed) != 3 {
		t.Fatalf("expected every step to fail, got %v", result.Failed)
	}
	if !errors.Is(result.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", result.Err)
	}
}

func TestLinkedName(t *testing.T) {
	if got := LinkedName("characters.json"); got != "characters_linked.json" {
		t.Fatalf("expected characters_linked.json, got %s", got)
	}
	if got := LinkedName("intro"); got != "intro_linked" {
		t.Fatalf("expected intro_linked, got %s", got)
	}
}

func TestReferencesKeepUnmodelledKeys(t *testing.T) {
	dataDir := t.TempDir()
	entries, err := os.ReadDir(fixtureDir)
	if err != nil {
		t.Fatalf("reading fixture dir: %v", err)
	}
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(fixtureDir, entry.Name()))
		if err != nil {
			t.Fatalf("reading fixture: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dataDir, entry.Name()), data, 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
	}
	extra := map[string]string{
		"characters.json": `[{"id":"tamen","name":"Tamen","image":"img/tamen.png","age":40,"description":"Tamen canta en la Torre Roja."}]`,
		"intro.json":      `{"title":"Radio Micelio","logline":"x"}`,
		"timeline.json":   `[{"id":"signal","title":"Primera señal","date_hint":"1999","stage":"awakening"}]`,
	}
	for name, data := range extra {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(data), 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
	}
	env := testEnv(t, dataDir)

	result := Run(context.Background(), env, []string{StepReferences})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	read := func(name string, v any) {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(env.Config.OutputDir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if err := json.Unmarshal(data, v); err != nil {
			t.Fatalf("decoding %s: %v", name, err)
		}
	}

	var characters []map[string]any
	read("characters_linked.json", &characters)
	if characters[0]["image"] != "img/tamen.png" || characters[0]["age"] != float64(40) {
		t.Fatalf("expected unmodelled character keys kept, got %v", characters[0])
	}
	if description, _ := characters[0]["description"].(string); !strings.Contains(description, `class="reference-link"`) {
		t.Fatalf("expected linked description, got %q", description)
	}

	var intro map[string]any
	read("intro_linked.json", &intro)
	if intro["title"] != "Radio Micelio" {
		t.Fatalf("expected intro title kept, got %v", intro)
	}

	var events []map[string]any
	read("timeline_linked.json", &events)
	if events[0]["date_hint"] != "1999" {
		t.Fatalf("expected date_hint kept, got %v", events[0])
	}
}

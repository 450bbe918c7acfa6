// Package pipeline runs the preprocessing steps that turn the editable
// content files into the documents the site reads.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"micelio/internal/config"
	"micelio/internal/content"
	"micelio/internal/ingest"
	"micelio/internal/linker"
	"micelio/internal/network"
	"micelio/internal/timeline"
)

const (
	StepReferences = "references"
	StepNetwork    = "network"
	StepTimeline   = "timeline"
	StepIndex      = "index"

	NetworkFile  = "network_data.json"
	TimelineFile = "timeline_visual_data.json"
)

// ErrUnknownStep is returned for a step name Run does not know.
var ErrUnknownStep = errors.New("unknown step")

// ErrNoStore is returned by the index step when Env carries no store.
var ErrNoStore = errors.New("index step needs a store")

// DefaultSteps are run when the caller names none.
var DefaultSteps = []string{StepReferences, StepNetwork, StepTimeline}

// Env is what every step runs against.
type Env struct {
	Config *config.ProjectConfig
	Log    *zap.Logger
	// Store is only needed by the index step.
	Store ingest.Store
	// Full disables hash skipping in the index step.
	Full bool
}

type Result struct {
	Succeeded []string
	Failed    []string
	Err       error
}

// Total is the number of steps attempted.
func (r *Result) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

type stepFunc func(ctx context.Context, env *Env) error

func lookup(name string) (stepFunc, bool) {
	switch name {
	case StepReferences:
		return runReferences, true
	case StepNetwork:
		return runNetwork, true
	case StepTimeline:
		return runTimeline, true
	case StepIndex:
		return runIndex, true
	}
	return nil, false
}

// Run executes steps in order. A failing step is logged and recorded and
// the rest still run; Err combines every failure.
func Run(ctx context.Context, env *Env, steps []string) *Result {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	log := env.logger()

	result := &Result{}
	for _, name := range steps {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, name)
			result.Err = multierr.Append(result.Err, fmt.Errorf("%s: %w", name, err))
			continue
		}

		fn, ok := lookup(name)
		if !ok {
			result.Failed = append(result.Failed, name)
			result.Err = multierr.Append(result.Err, fmt.Errorf("%w: %s", ErrUnknownStep, name))
			log.Error("Unknown step", zap.String("step", name))
			continue
		}

		started := time.Now()
		log.Info("Step starting", zap.String("step", name))
		if err := fn(ctx, env); err != nil {
			result.Failed = append(result.Failed, name)
			result.Err = multierr.Append(result.Err, fmt.Errorf("%s: %w", name, err))
			log.Error("Step failed", zap.String("step", name), zap.Error(err))
			continue
		}
		result.Succeeded = append(result.Succeeded, name)
		log.Info("Step done", zap.String("step", name), zap.Duration("elapsed", time.Since(started)))
	}

	return result
}

// LinkedName maps a source file name to its linked output name,
// e.g. characters.json to characters_linked.json.
func LinkedName(file string) string {
	ext := filepath.Ext(file)
	return strings.TrimSuffix(file, ext) + "_linked" + ext
}

func outputPath(env *Env, name string) string {
	return filepath.Join(env.Config.OutputDir, name)
}

func write(env *Env, name string, v any) error {
	path := outputPath(env, name)
	if _, err := content.WriteJSON(path, v, ""); err != nil {
		return err
	}
	env.logger().Debug("Wrote output", zap.String("file", path))
	return nil
}

func (env *Env) logger() *zap.Logger {
	if env.Log == nil {
		return zap.NewNop()
	}
	return env.Log
}

func runReferences(ctx context.Context, env *Env) error {
	cfg := env.Config
	ds, err := content.LoadDataset(cfg.DataDir, cfg.Files)
	if err != nil {
		return err
	}

	l := linker.ForDataset(ds, linker.WithClass(cfg.Linker.LinkClass))
	linked := linker.LinkDataset(ds, l)

	for _, c := range linked.Collections(cfg.Files) {
		if err := write(env, LinkedName(c.File), c.Value); err != nil {
			return err
		}
	}

	env.logger().Info("References linked",
		zap.Int("characters", len(ds.Characters)),
		zap.Int("locations", len(ds.Locations)),
		zap.Int("songs", len(ds.Songs)),
		zap.Int("plots", len(ds.Plots)),
		zap.Int("events", len(ds.Timeline)))
	return nil
}

func runNetwork(ctx context.Context, env *Env) error {
	cfg := env.Config
	characters, err := content.LoadCharacters(cfg.DataDir, cfg.Files)
	if err != nil {
		return err
	}

	graph := network.Build(characters, cfg.Network)
	if err := write(env, NetworkFile, graph); err != nil {
		return err
	}

	env.logger().Info("Network built",
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("edges", len(graph.Edges)))
	return nil
}

func runTimeline(ctx context.Context, env *Env) error {
	cfg := env.Config
	events, err := content.LoadTimeline(cfg.DataDir, cfg.Files)
	if err != nil {
		return err
	}

	opts, err := timeline.OptionsFromConfig(cfg.Timeline)
	if err != nil {
		return err
	}
	visual := timeline.Build(events, cfg.Timeline.Stages, opts)
	if dropped := len(events) - len(visual.Items); dropped > 0 {
		env.logger().Warn("Events with repeated ids skipped", zap.Int("count", dropped))
	}
	if err := write(env, TimelineFile, visual); err != nil {
		return err
	}

	env.logger().Info("Timeline built",
		zap.Int("items", len(visual.Items)),
		zap.Int("groups", len(visual.Groups)))
	return nil
}

func runIndex(ctx context.Context, env *Env) error {
	if env.Store == nil {
		return ErrNoStore
	}
	cfg := env.Config
	ds, err := content.LoadDataset(cfg.DataDir, cfg.Files)
	if err != nil {
		return err
	}

	res, err := ingest.Run(ctx, ds, env.Store, ingest.Options{
		Full:         env.Full,
		Files:        cfg.Files,
		Stages:       cfg.Timeline.Stages,
		DefaultStage: cfg.Timeline.DefaultStage,
		LinkClass:    cfg.Linker.LinkClass,
	})
	if err != nil {
		return err
	}

	env.logger().Info("Content indexed",
		zap.Int("upserted", res.EntitiesUpserted),
		zap.Int("skipped", res.EntitiesSkipped),
		zap.Int("removed", res.EntitiesRemoved),
		zap.Int("relations", res.RelationsUpserted))
	return multierr.Combine(res.Errors...)
}

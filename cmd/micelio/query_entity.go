package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"micelio/internal/config"
	"micelio/internal/content"
	"micelio/internal/store"
	"micelio/internal/timeline"
)

// bodyPreview caps the plain text shown for an entry.
const bodyPreview = 240

// eventPlacement holds the properties ingest adds to every event.
var eventPlacement = []string{"stage", "stage_name", "start_percent", "end_percent"}

func queryEntityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entity <kind> <id>",
		Short: "Show one indexed entry; events include their stage and progress range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryEntity(args[0], args[1])
		},
	}
}

func runQueryEntity(kind, id string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return withIndex(func(ctx context.Context, cfg *config.ProjectConfig, db store.Store) error {
		entity, err := db.GetEntity(ctx, kind, id)
		if err != nil {
			return err
		}
		if entity == nil {
			fmt.Fprintf(os.Stdout, "No %s with id %q is indexed. Run `micelio index` after editing.\n", kind, id)
			return nil
		}

		fmt.Fprintf(os.Stdout, "%s %s: %s\n", entity.Kind, entity.ID, entity.Name)
		if entity.SourceFile != "" {
			fmt.Fprintf(os.Stdout, "  file:  %s\n", entity.SourceFile)
		}
		if len(entity.Tags) > 0 {
			fmt.Fprintf(os.Stdout, "  tags:  %s\n", joinValues(entity.Tags))
		}

		props := entity.Properties
		if entity.Kind == string(content.KindEvent) {
			fmt.Fprintf(os.Stdout, "  stage: %v (%v), %s\n", props["stage_name"], props["stage"], progress(props))
			props = without(props, eventPlacement...)
		}

		if body := strings.TrimSpace(entity.Body); body != "" {
			fmt.Fprintf(os.Stdout, "\n%s\n", timeline.Truncate(body, bodyPreview))
		}

		if len(props) == 0 {
			return nil
		}
		keys := make([]string, 0, len(props))
		for key := range props {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintln(os.Stdout, "\nfields:")
		for _, key := range keys {
			fmt.Fprintf(os.Stdout, "  %s: %s\n", key, formatValue(props[key]))
		}
		return nil
	})
}

// progress renders the event's allocated range on the 0-100 axis.
func progress(props map[string]any) string {
	start, okStart := props["start_percent"].(float64)
	end, okEnd := props["end_percent"].(float64)
	if !okStart || !okEnd {
		return "no range"
	}
	return fmt.Sprintf("%.1f%% - %.1f%%", start, end)
}

func without(props map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(props))
	for key, value := range props {
		out[key] = value
	}
	for _, key := range keys {
		delete(out, key)
	}
	return out
}

// formatValue prints list fields (lyrics, skills, key elements) one per
// line and anything else as is.
func formatValue(value any) string {
	list, ok := value.([]any)
	if !ok {
		return fmt.Sprint(value)
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		parts = append(parts, "\n    - "+fmt.Sprint(item))
	}
	return strings.Join(parts, "")
}

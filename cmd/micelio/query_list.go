package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"micelio/internal/config"
	"micelio/internal/content"
	"micelio/internal/store"
)

func queryListCmd() *cobra.Command {
	var kind string
	var tag string
	var stage string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed content, grouped by kind",
		Long: "List indexed content, grouped by kind. --stage lists the timeline events laid\n" +
			"out in one stage; events carry their stage key as a tag.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryList(kind, tag, stage)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Only this kind (character, location, song, plot, intro, event)")
	cmd.Flags().StringVar(&tag, "tag", "", "Only entries carrying this tag")
	cmd.Flags().StringVar(&stage, "stage", "", "Only events of this timeline stage")
	return cmd
}

func runQueryList(kind, tag, stage string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return withIndex(func(ctx context.Context, cfg *config.ProjectConfig, db store.Store) error {
		if stage != "" {
			if _, ok := cfg.Timeline.Stages.ByKey(stage); !ok {
				return fmt.Errorf("unknown stage %q, expected one of: %s", stage, joinValues(cfg.Timeline.Stages.Keys()))
			}
			if kind != "" && kind != string(content.KindEvent) {
				return fmt.Errorf("--stage only applies to events")
			}
			if tag != "" {
				return fmt.Errorf("--stage and --tag cannot be combined")
			}
			kind, tag = string(content.KindEvent), stage
		}

		entities, err := db.ListEntities(ctx, kind, tag)
		if err != nil {
			return err
		}
		if len(entities) == 0 {
			fmt.Fprintln(os.Stdout, "Nothing indexed matches.")
			return nil
		}

		byKind := make(map[string][]store.EntitySummary)
		for _, entity := range entities {
			byKind[entity.Kind] = append(byKind[entity.Kind], entity)
		}
		for _, k := range content.Kinds {
			group := byKind[string(k)]
			if len(group) == 0 {
				continue
			}
			fmt.Fprintf(os.Stdout, "%s (%d)\n", k, len(group))
			for _, entity := range group {
				line := fmt.Sprintf("  %-24s %s", entity.ID, entity.Name)
				if len(entity.Tags) > 0 {
					line += "  #" + joinTags(entity.Tags)
				}
				fmt.Fprintln(os.Stdout, line)
			}
		}
		return nil
	})
}

func joinTags(tags []string) string {
	out := tags[0]
	for _, tag := range tags[1:] {
		out += " #" + tag
	}
	return out
}

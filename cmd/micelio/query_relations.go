package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"micelio/internal/config"
	"micelio/internal/store"
)

func queryRelationsCmd() *cobra.Command {
	var direction string
	cmd := &cobra.Command{
		Use:   "relations <kind> <id>",
		Short: "Show character relations and event simultaneity links",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryRelations(args[0], args[1], direction)
		},
	}
	cmd.Flags().StringVar(&direction, "direction", store.DirectionBoth, "Direction: outgoing, incoming, or both")
	return cmd
}

func runQueryRelations(kind, id, direction string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return withIndex(func(ctx context.Context, _ *config.ProjectConfig, db store.Store) error {
		rels, err := db.GetRelations(ctx, store.EntityRef{Kind: kind, ID: id}, direction)
		if err != nil {
			return err
		}
		if len(rels) == 0 {
			fmt.Fprintf(os.Stdout, "No relations found for %s/%s.\n", kind, id)
			return nil
		}

		for _, rel := range rels {
			fmt.Fprintf(os.Stdout, "%s (%s) -%s-> %s (%s) [%s]\n",
				rel.From.Name,
				rel.From.Kind,
				rel.Type,
				rel.To.Name,
				rel.To.Kind,
				rel.Direction,
			)
		}
		return nil
	})
}

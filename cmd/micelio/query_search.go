package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"micelio/internal/config"
	"micelio/internal/store"
)

func querySearchCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Full-text search over names, tags and prose",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuerySearch(strings.Join(args, " "), kind)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Only this kind (character, location, song, plot, intro, event)")
	return cmd
}

func runQuerySearch(query, kind string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return withIndex(func(ctx context.Context, _ *config.ProjectConfig, db store.Store) error {
		results, err := db.Search(ctx, query, kind)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(os.Stdout, "No matches found.")
			return nil
		}

		for _, result := range results {
			fmt.Fprintf(os.Stdout, "%s (%s/%s) score=%.2f\n", result.Name, result.Kind, result.ID, result.Score)
			if result.Snippet != "" {
				fmt.Fprintf(os.Stdout, "    %s\n", result.Snippet)
			}
		}
		return nil
	})
}

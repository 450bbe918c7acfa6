package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"micelio/internal/content"
	"micelio/internal/ingest"
)

func indexCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Synchronise the search index with the content files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(full)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Force full re-indexing (ignore content hashes)")
	return cmd
}

func runIndex(full bool) error {
	ctx := context.Background()

	cfg, log, err := loadProject()
	if err != nil {
		return err
	}
	defer log.Sync()

	ds, err := content.LoadDataset(cfg.DataDir, cfg.Files)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	result, err := ingest.Run(ctx, ds, db, ingest.Options{
		Full:         full,
		Files:        cfg.Files,
		Stages:       cfg.Timeline.Stages,
		DefaultStage: cfg.Timeline.DefaultStage,
		LinkClass:    cfg.Linker.LinkClass,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Indexing complete.")
	fmt.Fprintf(os.Stdout, "  Entities upserted:  %d\n", result.EntitiesUpserted)
	fmt.Fprintf(os.Stdout, "  Entities skipped:   %d\n", result.EntitiesSkipped)
	fmt.Fprintf(os.Stdout, "  Entities removed:   %d\n", result.EntitiesRemoved)
	fmt.Fprintf(os.Stdout, "  Relations upserted: %d\n", result.RelationsUpserted)

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("indexing completed with errors")
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"micelio/internal/config"
	"micelio/internal/content"
	"micelio/internal/store"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Inspect the content index (characters, locations, songs, plots, intro, events)",
	}
	cmd.AddCommand(queryEntityCmd())
	cmd.AddCommand(queryListCmd())
	cmd.AddCommand(querySearchCmd())
	cmd.AddCommand(queryRelationsCmd())
	cmd.AddCommand(querySQLCmd())
	return cmd
}

// withIndex loads the project, opens its content index and runs fn.
func withIndex(fn func(ctx context.Context, cfg *config.ProjectConfig, db store.Store) error) error {
	ctx := context.Background()

	cfg, log, err := loadProject()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	return fn(ctx, cfg, db)
}

// checkKind accepts an empty kind (every collection) or a known one.
func checkKind(kind string) error {
	if kind == "" || content.Kind(kind).Valid() {
		return nil
	}
	names := make([]string, 0, len(content.Kinds))
	for _, k := range content.Kinds {
		names = append(names, string(k))
	}
	return fmt.Errorf("unknown kind %q, expected one of: %s", kind, joinValues(names))
}

func joinValues(values []string) string {
	return strings.Join(values, ", ")
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"micelio/internal/content"
	"micelio/internal/sanitize"
)

const cleanBackupSuffix = ".bak2"

func cleanCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Strip leftover markup from the content files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	return cmd
}

func runClean(dryRun bool) error {
	cfg, log, err := loadProject()
	if err != nil {
		return err
	}
	defer log.Sync()

	ds, err := content.LoadDataset(cfg.DataDir, cfg.Files)
	if err != nil {
		return err
	}

	changes := sanitize.CleanDataset(ds)
	if changes.Total() == 0 {
		fmt.Fprintln(os.Stdout, "Nothing to clean.")
		return nil
	}

	for _, c := range ds.Collections(cfg.Files) {
		n := changes[c.Kind]
		if n == 0 {
			continue
		}
		path := filepath.Join(cfg.DataDir, c.File)
		fmt.Fprintf(os.Stdout, "%s: %d fields cleaned\n", c.File, n)
		if dryRun {
			continue
		}
		backedUp, err := content.WriteJSON(path, c.Value, cleanBackupSuffix)
		if err != nil {
			return err
		}
		log.Info("Cleaned collection", zap.String("file", path), zap.Int("fields", n), zap.Bool("backup", backedUp))
	}

	if dryRun {
		fmt.Fprintln(os.Stdout, "Dry run, no files written.")
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"micelio/internal/pipeline"
)

func preprocessCmd() *cobra.Command {
	var withIndex bool
	var full bool
	cmd := &cobra.Command{
		Use:   "preprocess [step...]",
		Short: "Run the preprocessing steps (references, network, timeline)",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := args
			if len(steps) == 0 {
				steps = append([]string{}, pipeline.DefaultSteps...)
			}
			if withIndex {
				steps = append(steps, pipeline.StepIndex)
			}
			return runPipeline(steps, full)
		},
	}
	cmd.Flags().BoolVar(&withIndex, "index", false, "Also refresh the search index")
	cmd.Flags().BoolVar(&full, "full", false, "Re-index every entity (ignore content hashes)")
	return cmd
}

// stepCmd exposes a single pipeline step as its own command.
func stepCmd(use, short, step string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline([]string{step}, false)
		},
	}
}

func runPipeline(steps []string, full bool) error {
	ctx := context.Background()

	cfg, log, err := loadProject()
	if err != nil {
		return err
	}
	defer log.Sync()

	env := &pipeline.Env{Config: cfg, Log: log, Full: full}
	for _, step := range steps {
		if step != pipeline.StepIndex {
			continue
		}
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close(ctx)
		env.Store = db
		break
	}

	result := pipeline.Run(ctx, env, steps)
	fmt.Fprintf(os.Stdout, "%d/%d steps succeeded\n", len(result.Succeeded), result.Total())
	if result.Err != nil {
		for _, name := range result.Failed {
			fmt.Fprintf(os.Stdout, "  - %s failed\n", name)
		}
		log.Debug("Pipeline errors", zap.Error(result.Err))
		return result.Err
	}
	return nil
}

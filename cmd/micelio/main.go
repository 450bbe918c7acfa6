package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"micelio/internal/config"
	"micelio/internal/pipeline"
)

var configPath = "micelio.yaml"

func main() {
	root := &cobra.Command{
		Use:          "micelio",
		Short:        "Content pipeline for the Radio Micelio story site",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Project configuration file")
	root.AddCommand(initCmd())
	root.AddCommand(preprocessCmd())
	root.AddCommand(stepCmd("link", "Inject reference links into every collection", pipeline.StepReferences))
	root.AddCommand(stepCmd("network", "Build the character relation graph", pipeline.StepNetwork))
	root.AddCommand(stepCmd("timeline", "Allocate timeline ranges and build the visual data", pipeline.StepTimeline))
	root.AddCommand(validateCmd())
	root.AddCommand(cleanCmd())
	root.AddCommand(indexCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadProject reads the project configuration and builds the logger it
// describes.
func loadProject() (*config.ProjectConfig, *zap.Logger, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := cfg.Logging.Prepare()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

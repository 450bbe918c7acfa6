package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var projectName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new micelio project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	return cmd
}

const configTemplate = `project: %s
version: 1

data_dir: data
output_dir: data/processed

database:
  dsn: sqlite://./micelio.db

server:
  addr: ":8000"
  index_file: index.html

logging:
  console:
    level: normal

timeline:
  epoch: "2020-01-01"
  default_stage: future
`

var emptyCollections = map[string]string{
	"characters.json": "[]\n",
	"locations.json":  "[]\n",
	"songs.json":      "[]\n",
	"plots.json":      "[]\n",
	"timeline.json":   "[]\n",
	"intro.json":      "{}\n",
}

func runInit(projectName string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	configContents := fmt.Sprintf(configTemplate, projectName)
	if err := os.WriteFile(configPath, []byte(configContents), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	if err := os.MkdirAll("data", 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	for name, contents := range emptyCollections {
		path := filepath.Join("data", name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	fmt.Fprintf(os.Stdout, "Created %s and data/.\n", configPath)
	return nil
}

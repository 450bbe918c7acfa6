package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

type ProjectConfig struct {
	Project   string         `yaml:"project"`
	Version   int            `yaml:"version"`
	DataDir   string         `yaml:"data_dir"`
	OutputDir string         `yaml:"output_dir"`
	Files     FilesConfig    `yaml:"files"`
	Database  DatabaseConfig `yaml:"database"`
	Server    ServerConfig   `yaml:"server"`
	Logging   LoggingConfig  `yaml:"logging"`
	Linker    LinkerConfig   `yaml:"linker"`
	Timeline  TimelineConfig `yaml:"timeline"`
	Network   NetworkConfig  `yaml:"network"`
}

// FilesConfig names the source collections inside DataDir.
type FilesConfig struct {
	Characters string `yaml:"characters"`
	Locations  string `yaml:"locations"`
	Songs      string `yaml:"songs"`
	Plots      string `yaml:"plots"`
	Intro      string `yaml:"intro"`
	Timeline   string `yaml:"timeline"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	IndexFile    string   `yaml:"index_file"`
	AllowedFiles []string `yaml:"allowed_files"`
}

type LinkerConfig struct {
	LinkClass string `yaml:"link_class"`
}

type TimelineConfig struct {
	Epoch           string   `yaml:"epoch"`
	ContentBudget   int      `yaml:"content_budget"`
	PointKeywords   []string `yaml:"point_keywords"`
	EmitEmptyGroups bool     `yaml:"emit_empty_groups"`
	MinLabelSpacing float64  `yaml:"min_label_spacing"`
	LabelWrap       int      `yaml:"label_wrap"`
	DefaultStage    string   `yaml:"default_stage"`
	Stages          StageSet `yaml:"stages"`
}

type NetworkConfig struct {
	DefaultColor string            `yaml:"default_color"`
	TagColors    []TagColor        `yaml:"tag_colors"`
	PrincipalIDs []string          `yaml:"principal_ids"`
	Sizes        NetworkSizeConfig `yaml:"sizes"`
	Edges        EdgeColorConfig   `yaml:"edges"`
}

// EdgeColorConfig colours relation edges independently of the nodes.
type EdgeColorConfig struct {
	Color     string `yaml:"color"`
	Highlight string `yaml:"highlight"`
}

// TagColor maps a character tag to a node colour; earlier entries win.
type TagColor struct {
	Tag   string `yaml:"tag"`
	Color string `yaml:"color"`
}

type NetworkSizeConfig struct {
	Principal int `yaml:"principal"`
	Default   int `yaml:"default"`
}

// LoadProjectConfig reads path on top of Default and validates the result.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	cfg := Default()
	// stages are replaced wholesale when the file declares them
	cfg.Timeline.Stages = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	if len(cfg.Timeline.Stages) == 0 {
		cfg.Timeline.Stages = DefaultStages()
	}
	cfg.Timeline.Stages.sort()

	if err := validateProjectConfig(cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("data_dir is required")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if cfg.Timeline.ContentBudget <= 0 {
		return fmt.Errorf("timeline content_budget must be positive")
	}
	if cfg.Timeline.LabelWrap <= 0 {
		return fmt.Errorf("timeline label_wrap must be positive")
	}
	if _, err := cfg.Timeline.EpochTime(); err != nil {
		return err
	}
	if err := cfg.Timeline.Stages.Validate(); err != nil {
		return err
	}
	if _, ok := cfg.Timeline.Stages.ByKey(cfg.Timeline.DefaultStage); !ok {
		return fmt.Errorf("default stage %q is not configured", cfg.Timeline.DefaultStage)
	}
	if len(cfg.Server.AllowedFiles) == 0 {
		return fmt.Errorf("at least one allowed file is required")
	}
	for i, name := range cfg.Server.AllowedFiles {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("allowed file %d is empty", i)
		}
		if path.Base(name) != name || strings.Contains(name, `\`) {
			return fmt.Errorf("allowed file %q must be a bare file name", name)
		}
	}
	if err := cfg.Logging.Console.validate("console"); err != nil {
		return err
	}
	if err := cfg.Logging.File.validate("file"); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Network.Edges.Color) == "" || strings.TrimSpace(cfg.Network.Edges.Highlight) == "" {
		return fmt.Errorf("network edges need both color and highlight")
	}
	for i, tc := range cfg.Network.TagColors {
		if strings.TrimSpace(tc.Tag) == "" || strings.TrimSpace(tc.Color) == "" {
			return fmt.Errorf("network tag colour %d needs both tag and color", i)
		}
	}

	return nil
}

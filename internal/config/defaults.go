package config

// DefaultStages returns the six stages of the Radio Micelio storyline.
func DefaultStages() StageSet {
	return StageSet{
		{Key: "origin", Name: "Origen Cósmico", Color: "#9b59b6", PercentStart: 0, PercentEnd: 15, Order: 0},
		{Key: "awakening", Name: "Despertar", Color: "#3498db", PercentStart: 15, PercentEnd: 35, Order: 1},
		{Key: "inventrola", Name: "Inventrola", Color: "#e74c3c", PercentStart: 35, PercentEnd: 55, Order: 2},
		{Key: "seismic", Name: "Sísmico", Color: "#f39c12", PercentStart: 55, PercentEnd: 70, Order: 3},
		{Key: "tamen", Name: "Tamen y Amethystos", Color: "#27ae60", PercentStart: 70, PercentEnd: 90, Order: 4},
		{Key: "future", Name: "Convergencia Futura", Color: "#1abc9c", PercentStart: 90, PercentEnd: 100, Order: 5},
	}
}

func DefaultAllowedFiles() []string {
	return []string{
		"intro.json",
		"characters.json",
		"plots.json",
		"locations.json",
		"songs.json",
		"timeline.json",
	}
}

// Default returns a complete configuration; LoadProjectConfig overlays the
// project file on top of it.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Project:   "radio-micelio",
		Version:   1,
		DataDir:   "data",
		OutputDir: "data/processed",
		Files: FilesConfig{
			Characters: "characters.json",
			Locations:  "locations.json",
			Songs:      "songs.json",
			Plots:      "plots.json",
			Intro:      "intro.json",
			Timeline:   "timeline.json",
		},
		Database: DatabaseConfig{DSN: "sqlite://./micelio.db"},
		Server: ServerConfig{
			Addr:         ":8000",
			IndexFile:    "index.html",
			AllowedFiles: DefaultAllowedFiles(),
		},
		Logging: LoggingConfig{
			Console: LoggerConfig{Level: "normal"},
		},
		Linker: LinkerConfig{LinkClass: "reference-link"},
		Timeline: TimelineConfig{
			Epoch:           "2020-01-01",
			ContentBudget:   30,
			PointKeywords:   []string{"Explosión", "Caída", "Aparición"},
			EmitEmptyGroups: true,
			MinLabelSpacing: 3.0,
			LabelWrap:       35,
			DefaultStage:    "future",
			Stages:          DefaultStages(),
		},
		Network: NetworkConfig{
			DefaultColor: "#79c0ff",
			TagColors: []TagColor{
				{Tag: "protagonist", Color: "#27ae60"},
				{Tag: "antagonist", Color: "#e74c3c"},
				{Tag: "cosmic", Color: "#9b59b6"},
			},
			PrincipalIDs: []string{"vaquero-atomico", "sismico", "amethystos", "tamen"},
			Sizes:        NetworkSizeConfig{Principal: 30, Default: 20},
			Edges:        EdgeColorConfig{Color: "#666", Highlight: "#79c0ff"},
		},
	}
}

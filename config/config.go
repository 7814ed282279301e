// Package config provides configuration loading and management for the
// riskdata pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Source keys every run requires. Definitions and capabilities are
// optional inputs.
var requiredSources = []string{"risks", "controls", "questions"}

// Config is the complete pipeline configuration.
type Config struct {
	DataDir    string                `yaml:"data_dir"`
	Database   DatabaseConfig        `yaml:"database"`
	Sources    map[string]SourceSpec `yaml:"data_sources"`
	Extraction ExtractionConfig      `yaml:"extraction"`
	Output     OutputConfig          `yaml:"output"`
}

// DatabaseConfig configures the SQLite sink.
type DatabaseConfig struct {
	// File is the database file name, created under the output directory.
	File string `yaml:"file"`
}

// SourceSpec configures one workbook input.
type SourceSpec struct {
	// File is the workbook file name, resolved against DataDir.
	File string `yaml:"file"`
	// Columns maps canonical field names to explicit column names. An
	// explicit binding always wins over regex detection.
	Columns map[string]string `yaml:"columns"`
}

// ExtractionConfig tunes the extraction step.
type ExtractionConfig struct {
	// ValidateFiles requires every configured workbook to exist up front.
	ValidateFiles bool `yaml:"validate_files"`
	// RemoveDuplicates enables dedup-by-ID after extraction.
	RemoveDuplicates bool `yaml:"remove_duplicates"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// OutputConfig tunes run reporting.
type OutputConfig struct {
	// Dir is the output directory for the database file.
	Dir string `yaml:"dir"`
	// PrintSummary prints the run summary after processing.
	PrintSummary bool `yaml:"print_summary"`
	// CollectMetadata stores file and processing metadata in the sink.
	CollectMetadata bool `yaml:"collect_metadata"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:  "data",
		Database: DatabaseConfig{File: "risk_data.db"},
		Sources: map[string]SourceSpec{
			"risks": {
				File: "AI_Risk_Taxonomy_V6.1.xlsx",
				Columns: map[string]string{
					"id":          "ID",
					"title":       "Risk",
					"description": "Description",
				},
			},
			"controls": {
				File: "AI_Control_Framework_V1.2.xlsx",
				Columns: map[string]string{
					"id":    "Code",
					"title": "Purpose",
				},
			},
			"questions": {
				File: "AI_Interview_Questions_V2.xlsx",
				Columns: map[string]string{
					"id":              "Question Number",
					"text":            "Question",
					"category":        "Category",
					"topic":           "Topic",
					"risk_mapping":    "AIML Risk Taxonomy",
					"control_mapping": "AIML Control",
				},
			},
			"definitions": {
				File: "AI_Definitions_and_Taxonomy_V1.xlsx",
				Columns: map[string]string{
					"id":          "Term",
					"title":       "Term",
					"description": "Definition",
					"category":    "Category",
					"source":      "Source",
				},
			},
			"capabilities": {
				File: "AI_ML_Security_Capabilities_V1.xlsx",
			},
		},
		Extraction: ExtractionConfig{
			ValidateFiles:    true,
			RemoveDuplicates: true,
			LogLevel:         "info",
		},
		Output: OutputConfig{
			Dir:             "output",
			PrintSummary:    true,
			CollectMetadata: true,
		},
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveToFile writes the configuration as YAML, creating parent
// directories as needed.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Merge overlays non-zero fields from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.Database.File != "" {
		c.Database.File = other.Database.File
	}
	for name, spec := range other.Sources {
		base := c.Sources[name]
		if spec.File != "" {
			base.File = spec.File
		}
		if len(spec.Columns) > 0 {
			base.Columns = spec.Columns
		}
		if c.Sources == nil {
			c.Sources = map[string]SourceSpec{}
		}
		c.Sources[name] = base
	}
	if other.Extraction.LogLevel != "" {
		c.Extraction.LogLevel = other.Extraction.LogLevel
	}
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
}

// Source returns the configuration for a named data source.
func (c *Config) Source(name string) (SourceSpec, error) {
	spec, ok := c.Sources[name]
	if !ok {
		return SourceSpec{}, fmt.Errorf("data source %q not configured", name)
	}
	return spec, nil
}

// Validate checks the configuration for structural errors. A missing
// required section aborts the run before any extraction starts.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Database.File == "" {
		return fmt.Errorf("database.file is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("data_sources section is required")
	}
	for _, name := range requiredSources {
		spec, ok := c.Sources[name]
		if !ok {
			return fmt.Errorf("missing required data source %q", name)
		}
		if spec.File == "" {
			return fmt.Errorf("data source %q: file is required", name)
		}
		if len(spec.Columns) == 0 {
			return fmt.Errorf("data source %q: columns mapping is required", name)
		}
	}
	return nil
}

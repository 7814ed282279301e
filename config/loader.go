package config

import (
	"log/slog"
	"os"
)

// Environment variable overrides. Values take precedence over file
// configuration, matching the deployment convention of setting file names
// per environment.
var envOverrides = map[string]func(*Config, string){
	"RISKDATA_DATA_DIR":          func(c *Config, v string) { c.DataDir = v },
	"RISKDATA_DATABASE_FILE":     func(c *Config, v string) { c.Database.File = v },
	"RISKDATA_OUTPUT_DIR":        func(c *Config, v string) { c.Output.Dir = v },
	"RISKDATA_RISKS_FILE":        func(c *Config, v string) { setSourceFile(c, "risks", v) },
	"RISKDATA_CONTROLS_FILE":     func(c *Config, v string) { setSourceFile(c, "controls", v) },
	"RISKDATA_QUESTIONS_FILE":    func(c *Config, v string) { setSourceFile(c, "questions", v) },
	"RISKDATA_DEFINITIONS_FILE":  func(c *Config, v string) { setSourceFile(c, "definitions", v) },
	"RISKDATA_CAPABILITIES_FILE": func(c *Config, v string) { setSourceFile(c, "capabilities", v) },
	"RISKDATA_LOG_LEVEL":         func(c *Config, v string) { c.Extraction.LogLevel = v },
}

func setSourceFile(c *Config, name, file string) {
	spec := c.Sources[name]
	spec.File = file
	if c.Sources == nil {
		c.Sources = map[string]SourceSpec{}
	}
	c.Sources[name] = spec
}

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a configuration loader. A nil logger falls back to
// slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. Config file (when path is non-empty)
// 3. Environment variables
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				l.logger.Warn("config file not found, using defaults", slog.String("path", path))
			} else {
				return nil, err
			}
		} else {
			l.logger.Debug("loaded config file", slog.String("path", path))
			cfg.Merge(fileCfg)
		}
	}

	for env, apply := range envOverrides {
		if v := os.Getenv(env); v != "" {
			apply(cfg, v)
			l.logger.Debug("applied environment override", slog.String("var", env))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

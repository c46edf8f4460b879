// Package config loads the runtime settings: a YAML file plus environment
// overrides. Settings are read once at startup and passed down; the core
// algorithm never consults them directly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the full settings surface.
type Config struct {
	// Table acceptance thresholds.
	TableMinRows    int `yaml:"table_min_rows"`
	TableMinColumns int `yaml:"table_min_columns"`

	// Substituted for control characters during normalization.
	ControlCharReplacement string `yaml:"control_char_replacement"`

	// PatternSet selects "basic" or "extended" table patterns.
	PatternSet string `yaml:"pattern_set"`

	OutputDir string `yaml:"output_dir"`

	// Batch settings.
	Workers    int    `yaml:"workers"`
	FilterFile string `yaml:"filter_file"`
	ReportHTML bool   `yaml:"report_html"`

	// Optional extraction index database. Falls back to the DATABASE_URL
	// environment variable; empty disables the database index.
	DatabaseURL string `yaml:"database_url"`
}

// Default returns the settings used when no config file is given.
func Default() *Config {
	return &Config{
		TableMinRows:           2,
		TableMinColumns:        2,
		ControlCharReplacement: " ",
		PatternSet:             "extended",
		OutputDir:              "extracted",
		Workers:                4,
		ReportHTML:             true,
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults untouched (plus environment overrides).
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.TableMinRows < 2 {
		cfg.TableMinRows = 2
	}
	if cfg.TableMinColumns < 2 {
		cfg.TableMinColumns = 2
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

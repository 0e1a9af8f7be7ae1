// Package config loads relschema settings from defaults, a relschema.yaml
// file, RELSCHEMA_* environment variables and command line flags.
package config

import "github.com/tordrt/relschema/internal/dot"

// Report formats.
const (
	ReportMarkdown = "markdown"
	ReportText     = "text"
)

// Config holds all relschema options.
type Config struct {
	DatabaseURL   string   `koanf:"database_url"`
	Schema        string   `koanf:"schema"`
	Tables        []string `koanf:"tables"`
	ExcludeTables []string `koanf:"exclude_tables"`

	// Table selects a single diagram, written to Output or stdout.
	Table  string `koanf:"table"`
	Output string `koanf:"output"`

	OutputDir    string `koanf:"output_dir"`
	ReportFormat string `koanf:"report_format"`
	Workers      int    `koanf:"workers"`
	MetricsFile  string `koanf:"metrics_file"`

	IncludeImplied   bool   `koanf:"include_implied"`
	InferImplied     bool   `koanf:"infer_implied"`
	TwoDegrees       bool   `koanf:"two_degrees"`
	ColumnExclusions string `koanf:"column_exclusions"`
	AllExclusions    string `koanf:"all_exclusions"`
	MetaFile         string `koanf:"meta_file"`

	Verbose bool      `koanf:"verbose"`
	Dot     DotConfig `koanf:"dot"`
}

// DotConfig holds diagram styling.
type DotConfig struct {
	Font     string `koanf:"font"`
	FontSize int    `koanf:"font_size"`
	RankDir  string `koanf:"rankdir"`
	BgColor  string `koanf:"bg_color"`
	MaxSize  string `koanf:"max_size"`
}

// DiagramConfig converts the styling options to diagram settings. Unset
// values keep their defaults.
func (c DotConfig) DiagramConfig() *dot.Config {
	cfg := dot.DefaultConfig()
	if c.Font != "" {
		cfg.Font = c.Font
	}
	if c.FontSize > 0 {
		cfg.FontSize = c.FontSize
	}
	if c.RankDir != "" {
		cfg.RankDir = c.RankDir
	}
	if c.BgColor != "" {
		cfg.BgColor = c.BgColor
	}
	if c.MaxSize != "" {
		cfg.MaxSize = c.MaxSize
	}
	return cfg
}

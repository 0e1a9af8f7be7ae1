package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tordrt/relschema/internal/model"
)

var rankDirs = map[string]bool{"TB": true, "LR": true, "BT": true, "RL": true}

// Validate checks the configuration before any database work starts.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database_url is required\nHint: pass --db-url or set RELSCHEMA_DATABASE_URL")
	}
	if c.Table == "" && c.OutputDir == "" {
		return errors.New("output_dir is required when no single table is selected")
	}
	if c.Output != "" && c.Table == "" {
		return errors.New("output needs a table")
	}
	switch c.ReportFormat {
	case ReportMarkdown, ReportText:
	default:
		return fmt.Errorf("unknown report format %q (want %s or %s)", c.ReportFormat, ReportMarkdown, ReportText)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if !rankDirs[strings.ToUpper(c.Dot.RankDir)] {
		return fmt.Errorf("unknown dot.rankdir %q", c.Dot.RankDir)
	}
	if _, err := model.CompileExclusion(c.ColumnExclusions); err != nil {
		return fmt.Errorf("invalid column_exclusions: %w", err)
	}
	if _, err := model.CompileExclusion(c.AllExclusions); err != nil {
		return fmt.Errorf("invalid all_exclusions: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tordrt/relschema"
	"github.com/tordrt/relschema/internal/config"
	"github.com/tordrt/relschema/internal/formatter"
	"github.com/tordrt/relschema/internal/model"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "relschema",
		Short: "Draw relationship diagrams of a database schema",
		Long: `relschema extracts a schema from PostgreSQL, MySQL, or SQLite and writes one
Graphviz dot diagram per table, showing the tables it references and the tables
that reference it, plus a report of every table's relatives.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "Config file (default: relschema.yaml)")
	f.String("db-url", "", "Database URL (postgres://, mysql://, or sqlite://)")
	f.StringP("schema", "s", "", "Database schema name (default: public for PostgreSQL, database name for MySQL)")
	f.StringSliceP("tables", "t", nil, "Only extract these tables (comma-separated)")
	f.StringSlice("exclude-tables", nil, "Tables to leave out (comma-separated)")
	f.String("table", "", "Write only this table's diagram")
	f.StringP("output", "o", "", "Output file for --table (default: stdout)")
	f.StringP("output-dir", "d", "", "Output directory (default: "+config.DefaultOutputDir+")")
	f.StringP("report-format", "f", "", "Report format: markdown or text (default: markdown)")
	f.Int("workers", 0, "Diagrams built at once (default: GOMAXPROCS)")
	f.String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
	f.Bool("implied", false, "Draw implied relationships")
	f.Bool("infer-implied", true, "Infer implied relationships from column names")
	f.Bool("two-degrees", false, "With --table, also draw the relatives of relatives")
	f.String("column-exclusions", "", "Regexp of table.column names drawn only on their own table's diagram")
	f.String("all-exclusions", "", "Regexp of table.column names never drawn")
	f.String("meta-file", "", "YAML file with extra relationships")
	f.BoolP("verbose", "v", false, "Log debug output")

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(stderr, cfg.Verbose)

	s, err := relschema.ExtractSchema(ctx, cfg.DatabaseURL, &relschema.Options{
		Tables:        cfg.Tables,
		ExcludeTables: cfg.ExcludeTables,
		SchemaName:    cfg.Schema,
	})
	if err != nil {
		return fmt.Errorf("failed to extract schema: %w", err)
	}
	logger.Debug("Extracted schema", "schema", s.Name, "tables", len(s.Tables))

	d, err := relschema.BuildModel(s, &relschema.ModelOptions{
		MetaFile:         cfg.MetaFile,
		ColumnExclusions: cfg.ColumnExclusions,
		AllExclusions:    cfg.AllExclusions,
		InferImplied:     cfg.InferImplied,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	opts := &relschema.DiagramOptions{
		OutputDir:      cfg.OutputDir,
		TwoDegrees:     cfg.TwoDegrees,
		IncludeImplied: cfg.IncludeImplied,
		Workers:        cfg.Workers,
		ReportFormat:   cfg.ReportFormat,
		MetricsFile:    cfg.MetricsFile,
		Format:         cfg.Dot.DiagramConfig(),
		Logger:         logger,
	}

	var notice string
	if cfg.Table != "" {
		notice, err = writeSingle(d, cfg, stdout, opts)
		if err != nil {
			return err
		}
	} else {
		summary, err := relschema.GenerateDiagrams(ctx, d, opts)
		if err != nil {
			return fmt.Errorf("failed to write diagrams: %w", err)
		}
		logger.Info("Wrote diagrams", "dir", cfg.OutputDir, "tables", len(summary.Results), "report", summary.Report)
		notice = summary.HiddenNotice
	}

	if notice != "" {
		fmt.Fprintf(stderr, "%s. Use --implied to include them.\n", notice)
	}
	return nil
}

func writeSingle(d *model.Database, cfg *config.Config, stdout io.Writer, opts *relschema.DiagramOptions) (notice string, err error) {
	w := stdout
	if cfg.Output != "" {
		var f *os.File
		f, err = os.Create(cfg.Output)
		if err != nil {
			return "", fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		w = f
	}

	hidden, err := relschema.WriteTableDiagram(d, cfg.Table, w, opts)
	if err != nil {
		return "", err
	}
	return formatter.HiddenNotice([]formatter.TableResult{{Hidden: hidden}}), nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

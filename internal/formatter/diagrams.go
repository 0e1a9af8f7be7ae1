package formatter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tordrt/relschema/internal/dot"
	"github.com/tordrt/relschema/internal/model"
)

const (
	oneDegreeSuffix  = ".1degree.dot"
	twoDegreesSuffix = ".2degrees.dot"
)

// DiagramStats is the run-wide statistics sink of a DiagramWriter.
type DiagramStats interface {
	dot.WriteStats
	WroteDiagram(twoDegrees bool, hidden int)
}

// TableResult describes the diagrams written for one table.
type TableResult struct {
	Table *model.Table
	// Relatives are the tables one relationship away, as drawn.
	Relatives []*model.Table
	// Files are the written diagram paths relative to the output directory.
	Files []string
	// Hidden holds the implied relationships left out of the table's
	// diagrams, in natural order.
	Hidden []*model.ForeignKeyConstraint
}

// DiagramWriter writes the relationship diagrams of many tables into a
// directory.
type DiagramWriter struct {
	OutputDir      string
	IncludeImplied bool
	// Workers bounds the number of diagrams built at once. Zero uses
	// GOMAXPROCS.
	Workers int

	format *dot.Format
	stats  DiagramStats
	logger *slog.Logger
}

// NewDiagramWriter creates a writer into outputDir.
func NewDiagramWriter(outputDir string, format *dot.Format, stats DiagramStats, logger *slog.Logger) *DiagramWriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DiagramWriter{
		OutputDir: outputDir,
		format:    format,
		stats:     stats,
		logger:    logger,
	}
}

// Write writes a one-degree diagram for every table, plus a two-degree
// diagram when it draws more tables than the one-degree one. Results are in
// the order of tables.
func (w *DiagramWriter) Write(ctx context.Context, tables []*model.Table) ([]TableResult, error) {
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	workers := w.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]TableResult, len(tables))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := w.writeTable(t)
			if err != nil {
				return fmt.Errorf("failed to write diagrams for %s: %w", t, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (w *DiagramWriter) writeTable(t *model.Table) (TableResult, error) {
	res := TableResult{Table: t}
	hidden := make(model.ConstraintSet)

	one := dot.NewTableFormatter(w.format, t, false, w.IncludeImplied, w.stats, w.logger)
	oneDiagram := one.Assemble()
	if err := w.writeFile(one, oneDiagram, FileName(t, false)); err != nil {
		return res, err
	}
	res.Files = append(res.Files, FileName(t, false))
	for fk := range oneDiagram.SkippedImplied {
		hidden.Add(fk)
	}
	for _, n := range oneDiagram.Nodes {
		if !n.Focal() {
			res.Relatives = append(res.Relatives, n.Table())
		}
	}
	w.recordDiagram(false, oneDiagram)

	two := dot.NewTableFormatter(w.format, t, true, w.IncludeImplied, w.stats, w.logger)
	twoDiagram := two.Assemble()
	if len(twoDiagram.Nodes) > len(oneDiagram.Nodes) {
		if err := w.writeFile(two, twoDiagram, FileName(t, true)); err != nil {
			return res, err
		}
		res.Files = append(res.Files, FileName(t, true))
		for fk := range twoDiagram.SkippedImplied {
			hidden.Add(fk)
		}
		w.recordDiagram(true, twoDiagram)
	}

	res.Hidden = hidden.Sorted()
	return res, nil
}

func (w *DiagramWriter) writeFile(f *dot.TableFormatter, d *dot.Diagram, name string) (err error) {
	file, err := os.Create(filepath.Join(w.OutputDir, name))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return f.WriteDiagram(d, file)
}

func (w *DiagramWriter) recordDiagram(twoDegrees bool, d *dot.Diagram) {
	if w.stats != nil {
		w.stats.WroteDiagram(twoDegrees, len(d.SkippedImplied))
	}
}

// FileName returns the diagram file name for t.
func FileName(t *model.Table, twoDegrees bool) string {
	base := strings.NewReplacer("/", "_", `\`, "_").Replace(t.FullName())
	if twoDegrees {
		return base + twoDegreesSuffix
	}
	return base + oneDegreeSuffix
}

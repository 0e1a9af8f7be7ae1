package dot

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/tordrt/relschema/internal/model"
)

// WriteStats is shared by every diagram of a run. Implementations must be
// safe for concurrent use when diagrams are written in parallel.
type WriteStats interface {
	// ExcludedColumns returns the columns hidden from every diagram.
	ExcludedColumns() []*model.Column
	// WroteTable records that t was drawn in a diagram.
	WroteTable(t *model.Table)
}

// Diagram is an assembled relationship diagram ready to be written.
type Diagram struct {
	Name  string
	Focal *model.Table
	// Nodes in natural table order; the focal node is among them exactly once.
	Nodes []*Node
	// Connectors in natural order.
	Connectors []Connector
	// SkippedImplied holds implied constraints that would have been drawn had
	// implied relationships been included.
	SkippedImplied model.ConstraintSet
}

// Node returns the diagram's node for t, or nil.
func (d *Diagram) Node(t *model.Table) *Node {
	for _, n := range d.Nodes {
		if n.Table() == t {
			return n
		}
	}
	return nil
}

// TableFormatter builds the relationship diagram of a single table.
type TableFormatter struct {
	format         *Format
	table          *model.Table
	twoDegrees     bool
	includeImplied bool
	stats          WriteStats
	finder         ConnectorFinder
	logger         *slog.Logger
}

// NewTableFormatter creates a formatter for table. With twoDegrees the diagram
// also holds the relatives of table's relatives.
func NewTableFormatter(format *Format, table *model.Table, twoDegrees, includeImplied bool, stats WriteStats, logger *slog.Logger) *TableFormatter {
	if format == nil {
		format = NewFormat(nil)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TableFormatter{
		format:         format,
		table:          table,
		twoDegrees:     twoDegrees,
		includeImplied: includeImplied,
		stats:          stats,
		logger:         logger,
	}
}

// Assemble computes the diagram's nodes and connectors without writing
// anything.
func (f *TableFormatter) Assemble() *Diagram {
	focal := f.table
	skipped := make(model.ConstraintSet)
	written := map[*model.Table]struct{}{focal: {}}
	nodes := make(map[*model.Table]*Node)
	cfg := f.format.Config()

	relatives := immediateRelatives(focal, true, f.includeImplied, skipped)
	isRelative := make(map[*model.Table]bool, len(relatives))
	for _, rel := range relatives {
		isRelative[rel] = true
	}

	connectors := newConnectorSet(f.finder.RelatedConnectors(focal, f.includeImplied)...)

	for _, rel := range relatives {
		if _, ok := written[rel]; ok {
			continue
		}
		written[rel] = struct{}{}
		nodes[rel] = NewNode(rel, false, RelativeNodeConfig(), cfg)
		connectors.addAll(f.finder.RelatedConnectorsBetween(rel, focal, true, f.includeImplied))
	}

	// Edges into the focal table end at its column rows.
	connectors.update(func(c Connector) Connector {
		if c.ParentTable() == focal {
			c = c.WithParentAnchor(AnchorColumn)
		}
		if c.ChildTable() == focal {
			c = c.WithChildAnchor(AnchorColumn)
		}
		return c
	})

	cousins := make(map[*model.Table]bool)
	cousinConnectors := newConnectorSet()
	if f.twoDegrees {
		for _, rel := range relatives {
			found := immediateRelatives(rel, false, f.includeImplied, skipped)
			for _, cousin := range found {
				if _, ok := written[cousin]; ok {
					continue
				}
				written[cousin] = struct{}{}
				cousinConnectors.addAll(f.finder.RelatedConnectorsBetween(cousin, rel, false, f.includeImplied))
				nodes[cousin] = NewNode(cousin, false, CousinNodeConfig(), cfg)
			}
			for _, cousin := range found {
				cousins[cousin] = true
			}
		}
	}

	// Glue pass: the radial walk above misses edges between two relatives or
	// two cousins. Every unordered pair of participants is checked once, which
	// is quadratic in the number of participants; a diagram rarely holds more
	// than a few dozen tables.
	participants := sortedTables(nodes)
	for i, a := range participants {
		for _, b := range participants[i+1:] {
			for _, c := range f.finder.RelatedConnectorsBetween(a, b, false, f.includeImplied) {
				if f.twoDegrees && (cousins[a] || cousins[b]) {
					cousinConnectors.add(c)
				} else {
					connectors.add(c)
				}
			}
		}
	}

	if f.stats != nil {
		for _, col := range f.stats.ExcludedColumns() {
			if n, ok := nodes[col.Table()]; ok {
				n.ExcludeColumn(col)
			}
		}
	}

	// Cousins show no columns, so their edges end at the title.
	cousinConnectors.update(func(c Connector) Connector {
		if cousins[c.ParentTable()] && !isRelative[c.ParentTable()] {
			c = c.WithParentAnchor(AnchorTable)
		}
		if cousins[c.ChildTable()] && !isRelative[c.ChildTable()] {
			c = c.WithChildAnchor(AnchorTable)
		}
		return c
	})

	nodes[focal] = NewNode(focal, true, FocalNodeConfig(), cfg)

	connectors.addAll(cousinConnectors.sorted())
	all := connectors.sorted()
	for _, c := range all {
		if !c.Implied() {
			continue
		}
		if n, ok := nodes[c.ParentTable()]; ok {
			n.SetShowImplied(true)
		}
		if n, ok := nodes[c.ChildTable()]; ok {
			n.SetShowImplied(true)
		}
	}

	ordered := make([]*Node, 0, len(nodes))
	for _, t := range sortedTables(nodes) {
		ordered = append(ordered, nodes[t])
	}

	return &Diagram{
		Name:           DiagramName(f.twoDegrees, f.includeImplied),
		Focal:          focal,
		Nodes:          ordered,
		Connectors:     all,
		SkippedImplied: skipped,
	}
}

// Write assembles the diagram and writes it to w. It returns the implied
// constraints that were left out because implied relationships are not
// included.
func (f *TableFormatter) Write(w io.Writer) (model.ConstraintSet, error) {
	d := f.Assemble()
	if err := f.WriteDiagram(d, w); err != nil {
		return nil, err
	}
	return d.SkippedImplied, nil
}

// WriteDiagram writes an assembled diagram to w and reports every node to the
// write statistics.
func (f *TableFormatter) WriteDiagram(d *Diagram, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := f.format.WriteHeader(d.Name, true, bw); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", d.Focal, err)
	}
	for _, c := range d.Connectors {
		_, _ = fmt.Fprintln(bw, c.String())
	}
	for _, n := range d.Nodes {
		_, _ = fmt.Fprintln(bw, n.String())
		if f.stats != nil {
			f.stats.WroteTable(n.Table())
		}
	}
	_, _ = fmt.Fprintln(bw, "}")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write diagram for %s: %w", d.Focal, err)
	}

	f.logger.Debug("wrote relationship diagram",
		"table", d.Focal.FullName(),
		"diagram", d.Name,
		"nodes", len(d.Nodes),
		"connectors", len(d.Connectors),
		"skipped_implied", len(d.SkippedImplied))
	return nil
}

func sortedTables(nodes map[*model.Table]*Node) []*model.Table {
	tables := make([]*model.Table, 0, len(nodes))
	for t := range nodes {
		tables = append(tables, t)
	}
	model.SortTables(tables)
	return tables
}

package dot

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/tordrt/relschema/internal/model"
)

// NodeConfig controls how much of a table a node shows.
type NodeConfig struct {
	// ShowColumns draws column rows at all.
	ShowColumns bool
	// ShowTrivialColumns draws columns that take part in no key, index or
	// relationship.
	ShowTrivialColumns bool
	// ShowColumnDetails adds each column's type.
	ShowColumnDetails bool
}

// FocalNodeConfig shows every column with its type.
func FocalNodeConfig() NodeConfig {
	return NodeConfig{ShowColumns: true, ShowTrivialColumns: true, ShowColumnDetails: true}
}

// RelativeNodeConfig shows the key and relationship columns only.
func RelativeNodeConfig() NodeConfig {
	return NodeConfig{ShowColumns: true}
}

// CousinNodeConfig shows the title only.
func CousinNodeConfig() NodeConfig {
	return NodeConfig{}
}

// Node is a table box in a relationship diagram.
type Node struct {
	table       *model.Table
	focal       bool
	config      NodeConfig
	showImplied bool
	excluded    map[*model.Column]struct{}
	format      *Config
}

// NewNode creates a node for table.
func NewNode(table *model.Table, focal bool, config NodeConfig, format *Config) *Node {
	if format == nil {
		format = DefaultConfig()
	}
	return &Node{
		table:    table,
		focal:    focal,
		config:   config,
		excluded: make(map[*model.Column]struct{}),
		format:   format,
	}
}

// Table returns the node's table.
func (n *Node) Table() *model.Table { return n.table }

// Focal reports whether this is the diagram's focal table.
func (n *Node) Focal() bool { return n.focal }

// Config returns the display settings.
func (n *Node) Config() NodeConfig { return n.config }

// ShowImplied reports whether the implied-relationship marker is drawn.
func (n *Node) ShowImplied() bool { return n.showImplied }

// SetShowImplied turns the implied-relationship marker on or off.
func (n *Node) SetShowImplied(show bool) { n.showImplied = show }

// ExcludeColumn suppresses col from display.
func (n *Node) ExcludeColumn(col *model.Column) {
	n.excluded[col] = struct{}{}
}

// ExcludedColumns returns the suppressed columns in natural order.
func (n *Node) ExcludedColumns() []*model.Column {
	out := make([]*model.Column, 0, len(n.excluded))
	for c := range n.excluded {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// VisibleColumns returns the columns drawn as rows.
func (n *Node) VisibleColumns() []*model.Column {
	if !n.config.ShowColumns {
		return nil
	}
	var out []*model.Column
	for _, col := range n.table.Columns() {
		if _, ok := n.excluded[col]; ok {
			continue
		}
		if !n.config.ShowTrivialColumns && trivial(col) {
			continue
		}
		out = append(out, col)
	}
	return out
}

// trivial columns take part in no key, index or relationship.
func trivial(col *model.Column) bool {
	return !col.PrimaryKey && !col.Indexed && !col.Unique && !col.IsForeignKey() && !col.IsReferenced()
}

// htmlAttr quotes s as an attribute value inside an HTML-like label.
func htmlAttr(s string) string {
	return `"` + html.EscapeString(s) + `"`
}

func portAttr(port string) string {
	return " PORT=" + htmlAttr(port)
}

// columnPort is the port attribute of a column cell. A column named like the
// title port gets none, so edges anchored on it end at the title.
func columnPort(name string) string {
	if name == titlePort {
		return ""
	}
	return portAttr(name)
}

// String renders the node as a dot node statement with an HTML-like label.
func (n *Node) String() string {
	cols := 1
	if n.config.ShowColumnDetails {
		cols = 2
	}

	var b strings.Builder
	name := n.table.FullName()
	fmt.Fprintf(&b, "  %s [\n", quoteID(name))
	b.WriteString("    label=<\n")
	fmt.Fprintf(&b, "    <TABLE BORDER=\"2\" CELLBORDER=\"1\" CELLSPACING=\"0\" BGCOLOR=%s>\n", htmlAttr(n.format.BgColor))
	fmt.Fprintf(&b, "      <TR><TD COLSPAN=\"%d\" BGCOLOR=%s ALIGN=\"CENTER\"%s><B>%s</B></TD></TR>\n",
		cols, htmlAttr(n.format.HeaderColor), portAttr(titlePort), html.EscapeString(name))

	for _, col := range n.VisibleColumns() {
		label := html.EscapeString(col.Name)
		if col.PrimaryKey {
			label = "<U>" + label + "</U>"
		}
		if n.config.ShowColumnDetails {
			fmt.Fprintf(&b, "      <TR><TD%s ALIGN=\"LEFT\">%s</TD><TD%s ALIGN=\"LEFT\">%s</TD></TR>\n",
				columnPort(col.Name), label, portAttr(col.Name+".type"), html.EscapeString(col.Type))
		} else {
			fmt.Fprintf(&b, "      <TR><TD%s ALIGN=\"LEFT\">%s</TD></TR>\n", columnPort(col.Name), label)
		}
	}

	if n.showImplied {
		fmt.Fprintf(&b, "      <TR><TD COLSPAN=\"%d\" ALIGN=\"CENTER\"><I>implied relationships</I></TD></TR>\n", cols)
	}

	footer := fmt.Sprintf("&lt; %d &nbsp; %d &gt;", n.table.NumParents(), n.table.NumChildren())
	fmt.Fprintf(&b, "      <TR><TD COLSPAN=\"%d\" BGCOLOR=%s ALIGN=\"CENTER\">%s</TD></TR>\n",
		cols, htmlAttr(n.format.FooterColor), footer)
	b.WriteString("    </TABLE>>\n")
	fmt.Fprintf(&b, "    tooltip=%s\n", quoteID(name))
	b.WriteString("  ];")
	return b.String()
}

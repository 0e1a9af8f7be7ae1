package dot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tordrt/relschema/internal/model"
)

// Anchor says where an edge endpoint attaches to its node.
type Anchor int

const (
	// AnchorColumn points at the column's row.
	AnchorColumn Anchor = iota
	// AnchorTable points at the table's title, for nodes drawn without
	// column detail.
	AnchorTable
)

func (a Anchor) String() string {
	if a == AnchorTable {
		return "table"
	}
	return "column"
}

// titlePort is the port of a node's title cell.
const titlePort = "__title"

// Connector is one edge of a relationship diagram, drawn from the child
// column to the parent column it references. Connectors are values: the
// setters return updated copies.
type Connector struct {
	parent       *model.Column
	child        *model.Column
	implied      bool
	parentAnchor Anchor
	childAnchor  Anchor
}

// NewConnector creates a connector anchored at the column on both ends.
func NewConnector(parent, child *model.Column, implied bool) Connector {
	return Connector{parent: parent, child: child, implied: implied}
}

// ParentColumn returns the referenced column.
func (c Connector) ParentColumn() *model.Column { return c.parent }

// ChildColumn returns the referencing column.
func (c Connector) ChildColumn() *model.Column { return c.child }

// ParentTable returns the referenced table.
func (c Connector) ParentTable() *model.Table { return c.parent.Table() }

// ChildTable returns the referencing table.
func (c Connector) ChildTable() *model.Table { return c.child.Table() }

// Implied reports whether the underlying constraint is implied.
func (c Connector) Implied() bool { return c.implied }

// ParentAnchor returns the anchor at the parent end.
func (c Connector) ParentAnchor() Anchor { return c.parentAnchor }

// ChildAnchor returns the anchor at the child end.
func (c Connector) ChildAnchor() Anchor { return c.childAnchor }

// WithParentAnchor returns c anchored at a on the parent end.
func (c Connector) WithParentAnchor(a Anchor) Connector {
	c.parentAnchor = a
	return c
}

// WithChildAnchor returns c anchored at a on the child end.
func (c Connector) WithChildAnchor(a Anchor) Connector {
	c.childAnchor = a
	return c
}

// Compare orders connectors by child table and column, then parent table and
// column; declared sorts before implied.
func (c Connector) Compare(o Connector) int {
	if rc := c.ChildTable().Compare(o.ChildTable()); rc != 0 {
		return rc
	}
	if rc := compareColumnNames(c.child, o.child); rc != 0 {
		return rc
	}
	if rc := c.ParentTable().Compare(o.ParentTable()); rc != 0 {
		return rc
	}
	if rc := compareColumnNames(c.parent, o.parent); rc != 0 {
		return rc
	}
	switch {
	case c.implied == o.implied:
		return 0
	case c.implied:
		return 1
	default:
		return -1
	}
}

func compareColumnNames(a, b *model.Column) int {
	if rc := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); rc != 0 {
		return rc
	}
	return strings.Compare(a.Name, b.Name)
}

// String renders the connector as a dot edge statement.
func (c Connector) String() string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(endpoint(c.child, c.childAnchor, "w"))
	b.WriteString(" -> ")
	b.WriteString(endpoint(c.parent, c.parentAnchor, "e"))

	fmt.Fprintf(&b, " [arrowhead=none dir=back arrowtail=%s", c.arrowTail())
	if c.implied {
		b.WriteString(" style=dashed")
	}
	b.WriteString("];")
	return b.String()
}

// arrowTail draws crow's feet for many-to-one and a tee for one-to-one
// relationships, with an open dot when the child may be null.
func (c Connector) arrowTail() string {
	tail := "crow"
	if c.child.Unique || (c.child.PrimaryKey && len(c.ChildTable().PrimaryKey()) == 1) {
		tail = "tee"
	}
	if c.child.Nullable {
		tail += "odot"
	}
	return tail
}

func endpoint(col *model.Column, anchor Anchor, compass string) string {
	port := col.Name
	if anchor == AnchorTable {
		port = titlePort
	}
	return quoteID(col.Table().FullName()) + ":" + quoteID(port) + ":" + compass
}

type connectorKey struct {
	parent  *model.Column
	child   *model.Column
	implied bool
}

func (c Connector) key() connectorKey {
	return connectorKey{parent: c.parent, child: c.child, implied: c.implied}
}

// connectorSet holds connectors of one diagram build. Adding a connector
// equal to one already present keeps the present one.
type connectorSet struct {
	items map[connectorKey]Connector
}

func newConnectorSet(cs ...Connector) *connectorSet {
	s := &connectorSet{items: make(map[connectorKey]Connector, len(cs))}
	s.addAll(cs)
	return s
}

func (s *connectorSet) add(c Connector) bool {
	k := c.key()
	if _, ok := s.items[k]; ok {
		return false
	}
	s.items[k] = c
	return true
}

func (s *connectorSet) addAll(cs []Connector) {
	for _, c := range cs {
		s.add(c)
	}
}

// update replaces every connector with fn's result.
func (s *connectorSet) update(fn func(Connector) Connector) {
	for k, c := range s.items {
		s.items[k] = fn(c)
	}
}

func (s *connectorSet) len() int {
	return len(s.items)
}

// sorted returns the connectors in natural order.
func (s *connectorSet) sorted() []Connector {
	out := make([]Connector, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c)
	}
	sortConnectors(out)
	return out
}

func sortConnectors(cs []Connector) {
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].Compare(cs[j]) < 0
	})
}

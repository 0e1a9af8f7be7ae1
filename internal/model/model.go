// Package model is the navigable, read-only view of a database schema used
// to build relationship diagrams. Every column knows the columns it
// references (parents) and the columns referencing it (children), each edge
// backed by exactly one ForeignKeyConstraint.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Database is a linked schema. It is built once and shared read-only by all
// diagram builds.
type Database struct {
	Name string

	tables      []*Table
	byName      map[string]*Table
	constraints map[constraintKey]*ForeignKeyConstraint
}

type constraintKey struct {
	parent *Column
	child  *Column
}

// NewDatabase creates an empty database.
func NewDatabase(name string) *Database {
	return &Database{
		Name:        name,
		byName:      make(map[string]*Table),
		constraints: make(map[constraintKey]*ForeignKeyConstraint),
	}
}

// AddTable adds a table, or returns the existing one with the same name.
func (d *Database) AddTable(schemaName, name string) *Table {
	if t, ok := d.byName[name]; ok {
		return t
	}
	t := &Table{
		Schema:  schemaName,
		Name:    name,
		db:      d,
		columns: make(map[string]*Column),
	}
	d.tables = append(d.tables, t)
	d.byName[name] = t
	return t
}

// Table looks a table up by name. An exact match wins over a
// case-insensitive one.
func (d *Database) Table(name string) (*Table, bool) {
	if t, ok := d.byName[name]; ok {
		return t, true
	}
	for _, t := range d.tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return nil, false
}

// Tables returns all tables in natural order.
func (d *Database) Tables() []*Table {
	tables := make([]*Table, len(d.tables))
	copy(tables, d.tables)
	SortTables(tables)
	return tables
}

// Constraints returns every constraint in natural order.
func (d *Database) Constraints() []*ForeignKeyConstraint {
	out := make([]*ForeignKeyConstraint, 0, len(d.constraints))
	for _, fk := range d.constraints {
		out = append(out, fk)
	}
	sortConstraints(out)
	return out
}

// ExcludedColumns returns every column flagged Excluded or AllExcluded.
func (d *Database) ExcludedColumns() []*Column {
	var out []*Column
	for _, t := range d.Tables() {
		for _, c := range t.orderedColumns {
			if c.Excluded || c.AllExcluded {
				out = append(out, c)
			}
		}
	}
	return out
}

// AddConstraint links child to parent. Only one constraint exists per column
// pair: adding an existing pair returns the existing constraint, which
// becomes declared if either definition is declared.
func (d *Database) AddConstraint(name string, parent, child *Column, implied bool) *ForeignKeyConstraint {
	key := constraintKey{parent: parent, child: child}
	if fk, ok := d.constraints[key]; ok {
		if !implied {
			fk.Implied = false
			if fk.Name == "" {
				fk.Name = name
			}
		}
		return fk
	}

	fk := &ForeignKeyConstraint{
		Name:    name,
		Parent:  parent,
		Child:   child,
		Implied: implied,
	}
	d.constraints[key] = fk
	parent.children[child] = fk
	child.parents[parent] = fk
	return fk
}

// Table is a database table with its ordered columns.
type Table struct {
	Schema string
	Name   string

	db             *Database
	orderedColumns []*Column
	columns        map[string]*Column
	primaryKey     []*Column
}

// AddColumn appends a column, or returns the existing one with the same name.
func (t *Table) AddColumn(name, typ string) *Column {
	if c, ok := t.columns[name]; ok {
		return c
	}
	c := &Column{
		Name:     name,
		Type:     typ,
		table:    t,
		parents:  make(map[*Column]*ForeignKeyConstraint),
		children: make(map[*Column]*ForeignKeyConstraint),
	}
	t.orderedColumns = append(t.orderedColumns, c)
	t.columns[name] = c
	return c
}

// SetPrimaryKey marks the named columns as the primary key. Unknown names
// are ignored.
func (t *Table) SetPrimaryKey(names ...string) {
	t.primaryKey = t.primaryKey[:0]
	for _, name := range names {
		if c, ok := t.columns[name]; ok {
			c.PrimaryKey = true
			t.primaryKey = append(t.primaryKey, c)
		}
	}
}

// FullName is the schema-qualified name, or just the name when the table
// has no schema.
func (t *Table) FullName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

func (t *Table) String() string {
	return t.FullName()
}

// Columns returns the columns in ordinal order.
func (t *Table) Columns() []*Column {
	return t.orderedColumns
}

// Column looks a column up by name, falling back to a case-insensitive match.
func (t *Table) Column(name string) (*Column, bool) {
	if c, ok := t.columns[name]; ok {
		return c, true
	}
	for _, c := range t.orderedColumns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}

// PrimaryKey returns the primary key columns in key order.
func (t *Table) PrimaryKey() []*Column {
	return t.primaryKey
}

// NumParents counts the constraints where this table is the child.
func (t *Table) NumParents() int {
	n := 0
	for _, c := range t.orderedColumns {
		n += len(c.parents)
	}
	return n
}

// NumChildren counts the constraints where this table is the parent.
func (t *Table) NumChildren() int {
	n := 0
	for _, c := range t.orderedColumns {
		n += len(c.children)
	}
	return n
}

// Compare orders tables by name ignoring case, then schema, then exact name.
func (t *Table) Compare(o *Table) int {
	if t == o {
		return 0
	}
	if rc := strings.Compare(strings.ToLower(t.Name), strings.ToLower(o.Name)); rc != 0 {
		return rc
	}
	if rc := strings.Compare(t.Schema, o.Schema); rc != 0 {
		return rc
	}
	return strings.Compare(t.Name, o.Name)
}

// SortTables sorts tables in natural order.
func SortTables(tables []*Table) {
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].Compare(tables[j]) < 0
	})
}

// Column is a table column and its foreign key neighbours.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	Unique     bool
	PrimaryKey bool
	Indexed    bool

	// Excluded columns are left out of relationship diagrams except when
	// discovering a table's direct relatives.
	Excluded bool
	// AllExcluded columns are left out of relationship diagrams entirely.
	AllExcluded bool

	table    *Table
	parents  map[*Column]*ForeignKeyConstraint
	children map[*Column]*ForeignKeyConstraint
}

// Table returns the owning table.
func (c *Column) Table() *Table {
	return c.table
}

// Parents returns the columns this column references, in natural order.
func (c *Column) Parents() []*Column {
	return sortedColumns(c.parents)
}

// Children returns the columns referencing this column, in natural order.
func (c *Column) Children() []*Column {
	return sortedColumns(c.children)
}

// ParentConstraint returns the constraint from this column to parent.
func (c *Column) ParentConstraint(parent *Column) *ForeignKeyConstraint {
	return c.parents[parent]
}

// ChildConstraint returns the constraint from child to this column.
func (c *Column) ChildConstraint(child *Column) *ForeignKeyConstraint {
	return c.children[child]
}

// IsForeignKey reports whether the column references another column.
func (c *Column) IsForeignKey() bool {
	return len(c.parents) > 0
}

// IsReferenced reports whether any column references this one.
func (c *Column) IsReferenced() bool {
	return len(c.children) > 0
}

// hasDeclaredParent reports whether any parent constraint is declared.
func (c *Column) hasDeclaredParent() bool {
	for _, fk := range c.parents {
		if !fk.Implied {
			return true
		}
	}
	return false
}

func (c *Column) String() string {
	return c.table.FullName() + "." + c.Name
}

// Compare orders columns by table, then name ignoring case.
func (c *Column) Compare(o *Column) int {
	if c == o {
		return 0
	}
	if rc := c.table.Compare(o.table); rc != 0 {
		return rc
	}
	if rc := strings.Compare(strings.ToLower(c.Name), strings.ToLower(o.Name)); rc != 0 {
		return rc
	}
	return strings.Compare(c.Name, o.Name)
}

func sortedColumns(m map[*Column]*ForeignKeyConstraint) []*Column {
	out := make([]*Column, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Compare(out[j]) < 0
	})
	return out
}

// ForeignKeyConstraint binds a child column to the parent column it
// references. Implied constraints were inferred rather than declared.
type ForeignKeyConstraint struct {
	Name    string
	Parent  *Column
	Child   *Column
	Implied bool
}

func (fk *ForeignKeyConstraint) String() string {
	s := fmt.Sprintf("%s -> %s", fk.Child, fk.Parent)
	if fk.Implied {
		s += " (implied)"
	}
	return s
}

// Compare orders constraints by child column, then parent column.
func (fk *ForeignKeyConstraint) Compare(o *ForeignKeyConstraint) int {
	if rc := fk.Child.Compare(o.Child); rc != 0 {
		return rc
	}
	return fk.Parent.Compare(o.Parent)
}

func sortConstraints(fks []*ForeignKeyConstraint) {
	sort.Slice(fks, func(i, j int) bool {
		return fks[i].Compare(fks[j]) < 0
	})
}

// ConstraintSet is a set of constraints. Constraints are unique per column
// pair, so pointer identity is set identity.
type ConstraintSet map[*ForeignKeyConstraint]struct{}

// Add inserts fk.
func (s ConstraintSet) Add(fk *ForeignKeyConstraint) {
	s[fk] = struct{}{}
}

// Contains reports whether fk is in the set.
func (s ConstraintSet) Contains(fk *ForeignKeyConstraint) bool {
	_, ok := s[fk]
	return ok
}

// Sorted returns the members in natural order.
func (s ConstraintSet) Sorted() []*ForeignKeyConstraint {
	out := make([]*ForeignKeyConstraint, 0, len(s))
	for fk := range s {
		out = append(out, fk)
	}
	sortConstraints(out)
	return out
}

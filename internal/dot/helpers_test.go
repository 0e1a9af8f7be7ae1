package dot

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tordrt/relschema/internal/model"
)

// testDB wraps a model.Database with terse builders for diagram fixtures.
type testDB struct {
	t  *testing.T
	db *model.Database
}

func newTestDB(t *testing.T) *testDB {
	return &testDB{t: t, db: model.NewDatabase("test")}
}

// table adds a table whose first column "id" is the primary key.
func (d *testDB) table(name string, columns ...string) *model.Table {
	tbl := d.db.AddTable("", name)
	tbl.AddColumn("id", "integer")
	for _, c := range columns {
		tbl.AddColumn(c, "integer")
	}
	tbl.SetPrimaryKey("id")
	return tbl
}

// col resolves "table.column".
func (d *testDB) col(ref string) *model.Column {
	d.t.Helper()
	tableName, colName, ok := strings.Cut(ref, ".")
	require.True(d.t, ok, "bad column reference %q", ref)
	tbl, ok := d.db.Table(tableName)
	require.True(d.t, ok, "no table %q", tableName)
	c, ok := tbl.Column(colName)
	require.True(d.t, ok, "no column %q", ref)
	return c
}

func (d *testDB) fk(child, parent string) *model.ForeignKeyConstraint {
	return d.db.AddConstraint("", d.col(parent), d.col(child), false)
}

func (d *testDB) implied(child, parent string) *model.ForeignKeyConstraint {
	return d.db.AddConstraint("", d.col(parent), d.col(child), true)
}

func (d *testDB) get(name string) *model.Table {
	d.t.Helper()
	tbl, ok := d.db.Table(name)
	require.True(d.t, ok, "no table %q", name)
	return tbl
}

// shop is orders with a declared reference to customers and an implied one to
// regions. invoices also reference customers, and regions belong to
// countries.
func shop(t *testing.T) *testDB {
	d := newTestDB(t)
	d.table("orders", "customer_id", "region_id")
	d.table("customers", "email")
	d.table("regions", "country_id")
	d.table("invoices", "customer_id")
	d.table("countries")
	d.fk("orders.customer_id", "customers.id")
	d.implied("orders.region_id", "regions.id")
	d.fk("invoices.customer_id", "customers.id")
	d.fk("regions.country_id", "countries.id")
	return d
}

type fakeStats struct {
	mu       sync.Mutex
	excluded []*model.Column
	wrote    []*model.Table
}

func (s *fakeStats) ExcludedColumns() []*model.Column { return s.excluded }

func (s *fakeStats) WroteTable(t *model.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrote = append(s.wrote, t)
}

func nodeNames(d *Diagram) []string {
	var names []string
	for _, n := range d.Nodes {
		names = append(names, n.Table().FullName())
	}
	return names
}

// edgeNames renders connectors as "child.col -> parent.col".
func edgeNames(cs []Connector) []string {
	var names []string
	for _, c := range cs {
		names = append(names, c.ChildColumn().String()+" -> "+c.ParentColumn().String())
	}
	return names
}

func skippedNames(s model.ConstraintSet) []string {
	var names []string
	for _, fk := range s.Sorted() {
		names = append(names, fk.String())
	}
	return names
}

package formatter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/relschema/internal/dot"
	"github.com/tordrt/relschema/internal/model"
	"github.com/tordrt/relschema/internal/stats"
	"github.com/tordrt/relschema/internal/testutil"
)

// shopDatabase has orders referencing customers (declared) and regions
// (implied), and invoices referencing customers.
func shopDatabase(t *testing.T) *model.Database {
	t.Helper()
	db := model.NewDatabase("shop")
	add := func(name string, columns ...string) *model.Table {
		tbl := db.AddTable("", name)
		tbl.AddColumn("id", "integer")
		for _, c := range columns {
			tbl.AddColumn(c, "integer")
		}
		tbl.SetPrimaryKey("id")
		return tbl
	}
	col := func(tbl *model.Table, name string) *model.Column {
		c, ok := tbl.Column(name)
		require.True(t, ok)
		return c
	}

	orders := add("orders", "customer_id", "region_id")
	customers := add("customers")
	regions := add("regions")
	invoices := add("invoices", "customer_id")

	db.AddConstraint("orders_customer_fk", col(customers, "id"), col(orders, "customer_id"), false)
	db.AddConstraint("", col(regions, "id"), col(orders, "region_id"), true)
	db.AddConstraint("invoices_customer_fk", col(customers, "id"), col(invoices, "customer_id"), false)
	return db
}

func resultFor(t *testing.T, results []TableResult, name string) TableResult {
	t.Helper()
	for _, r := range results {
		if r.Table.Name == name {
			return r
		}
	}
	t.Fatalf("no result for %s", name)
	return TableResult{}
}

func TestDiagramWriter_Write(t *testing.T) {
	db := shopDatabase(t)
	dir := t.TempDir()
	st := stats.New(nil, nil)

	w := NewDiagramWriter(dir, dot.NewFormat(nil), st, testutil.NewTestLogger(t))
	w.Workers = 2

	results, err := w.Write(context.Background(), db.Tables())
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, tbl := range db.Tables() {
		assert.Same(t, tbl, results[i].Table)
	}

	orders := resultFor(t, results, "orders")
	assert.Equal(t, []string{"orders.1degree.dot", "orders.2degrees.dot"}, orders.Files)
	assert.Equal(t, []string{"customers"}, tableNames(orders.Relatives))
	require.Len(t, orders.Hidden, 1)
	assert.Equal(t, "orders.region_id -> regions.id (implied)", orders.Hidden[0].String())

	customers := resultFor(t, results, "customers")
	assert.Equal(t, []string{"customers.1degree.dot"}, customers.Files, "two degrees add nothing")
	assert.Equal(t, []string{"invoices", "orders"}, tableNames(customers.Relatives))
	assert.Empty(t, customers.Hidden)

	regions := resultFor(t, results, "regions")
	assert.Empty(t, regions.Relatives)
	assert.Len(t, regions.Hidden, 1)

	for _, r := range results {
		for _, f := range r.Files {
			data, err := os.ReadFile(filepath.Join(dir, f))
			require.NoError(t, err)
			assert.Contains(t, string(data), "digraph ")
		}
	}
	_, err = os.Stat(filepath.Join(dir, "customers.2degrees.dot"))
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, 6, st.DiagramsWritten())
	assert.Equal(t, 4, st.TablesWritten())
	assert.Equal(t, "1 implied relationship was hidden", HiddenNotice(results))
}

func TestDiagramWriter_IncludeImplied(t *testing.T) {
	db := shopDatabase(t)
	w := NewDiagramWriter(t.TempDir(), nil, stats.New(nil, nil), testutil.NewTestLogger(t))
	w.IncludeImplied = true

	results, err := w.Write(context.Background(), db.Tables())
	require.NoError(t, err)

	regions := resultFor(t, results, "regions")
	assert.Equal(t, []string{"orders"}, tableNames(regions.Relatives))
	assert.Empty(t, HiddenNotice(results))
}

func TestDiagramWriter_BadOutputDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	w := NewDiagramWriter(file, nil, nil, nil)
	_, err := w.Write(context.Background(), shopDatabase(t).Tables())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
}

func TestDiagramWriter_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewDiagramWriter(t.TempDir(), nil, nil, nil)
	_, err := w.Write(ctx, shopDatabase(t).Tables())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileName(t *testing.T) {
	db := model.NewDatabase("x")
	plain := db.AddTable("", "orders")
	qualified := db.AddTable("sales", "invoices")
	odd := db.AddTable("", "a/b")

	assert.Equal(t, "orders.1degree.dot", FileName(plain, false))
	assert.Equal(t, "orders.2degrees.dot", FileName(plain, true))
	assert.Equal(t, "sales.invoices.1degree.dot", FileName(qualified, false))
	assert.Equal(t, "a_b.1degree.dot", FileName(odd, false))
}

//go:build integration
// +build integration

package relschema

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopDDL = `
CREATE TABLE customers (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE);
CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE orders (
	id INTEGER PRIMARY KEY,
	customer_id INTEGER NOT NULL REFERENCES customers(id),
	created_at TEXT
);
CREATE TABLE order_items (
	id INTEGER PRIMARY KEY,
	order_id INTEGER NOT NULL REFERENCES orders(id),
	product_id INTEGER NOT NULL
);
CREATE TABLE audit_log (id INTEGER PRIMARY KEY, message TEXT);
`

func sqliteURL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shop.db")

	setup, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = setup.Close() }()

	_, err = setup.ExecContext(ctx, shopDDL)
	require.NoError(t, err)
	return "sqlite://" + path
}

func TestExtractSchema(t *testing.T) {
	ctx := context.Background()
	url := sqliteURL(t)

	tests := []struct {
		name       string
		url        string
		opts       *Options
		wantTables []string
		wantErr    bool
	}{
		{
			name:       "SQLite all tables",
			url:        url,
			wantTables: []string{"audit_log", "customers", "order_items", "orders", "products"},
		},
		{
			name:       "SQLite specific tables",
			url:        url,
			opts:       &Options{Tables: []string{"orders", "customers"}},
			wantTables: []string{"orders", "customers"},
		},
		{
			name:       "SQLite excluded tables",
			url:        url,
			opts:       &Options{ExcludeTables: []string{"audit_log"}},
			wantTables: []string{"customers", "order_items", "orders", "products"},
		},
		{
			name:    "Invalid URL scheme",
			url:     "invalid://test.db",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ExtractSchema(ctx, tt.url, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var names []string
			for _, table := range s.Tables {
				names = append(names, table.Name)
			}
			assert.ElementsMatch(t, tt.wantTables, names)
		})
	}
}

func TestGenerateDiagrams_SQLite(t *testing.T) {
	ctx := context.Background()

	s, err := ExtractSchema(ctx, sqliteURL(t), &Options{ExcludeTables: []string{"audit_log"}})
	require.NoError(t, err)

	d, err := BuildModel(s, &ModelOptions{InferImplied: true})
	require.NoError(t, err)

	dir := t.TempDir()
	summary, err := GenerateDiagrams(ctx, d, &DiagramOptions{OutputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, "1 implied relationship was hidden", summary.HiddenNotice)
	for _, name := range []string{"orders.1degree.dot", "order_items.1degree.dot", "order_items.2degrees.dot", "_relationships.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	data, err := os.ReadFile(filepath.Join(dir, "order_items.2degrees.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"order_items":"order_id":w -> "orders":"id":e`)
	assert.Contains(t, string(data), `"customers"`)
}

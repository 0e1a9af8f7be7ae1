package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tordrt/relschema/internal/schema"
)

func TestInferImpliedConstraints(t *testing.T) {
	tests := []struct {
		name   string
		tables []schema.Table
		want   []string
	}{
		{
			name: "singular table plus key",
			tables: []schema.Table{
				{Name: "categories", Columns: []schema.Column{{Name: "id", Type: "int"}}, PrimaryKey: []string{"id"}},
				{Name: "products", Columns: []schema.Column{{Name: "id", Type: "int"}, {Name: "category_id", Type: "int"}}, PrimaryKey: []string{"id"}},
			},
			want: []string{"products.category_id -> categories.id (implied)"},
		},
		{
			name: "column named like the key",
			tables: []schema.Table{
				{Name: "customers", Columns: []schema.Column{{Name: "customer_no", Type: "varchar"}}, PrimaryKey: []string{"customer_no"}},
				{Name: "orders", Columns: []schema.Column{{Name: "id", Type: "int"}, {Name: "customer_no", Type: "VARCHAR"}}, PrimaryKey: []string{"id"}},
			},
			want: []string{"orders.customer_no -> customers.customer_no (implied)"},
		},
		{
			name: "type mismatch",
			tables: []schema.Table{
				{Name: "users", Columns: []schema.Column{{Name: "id", Type: "uuid"}}, PrimaryKey: []string{"id"}},
				{Name: "posts", Columns: []schema.Column{{Name: "id", Type: "int"}, {Name: "user_id", Type: "int"}}, PrimaryKey: []string{"id"}},
			},
		},
		{
			name: "generic id is not a reference",
			tables: []schema.Table{
				{Name: "users", Columns: []schema.Column{{Name: "id", Type: "int"}}, PrimaryKey: []string{"id"}},
				{Name: "logs", Columns: []schema.Column{{Name: "id", Type: "int"}}},
			},
		},
		{
			name: "ambiguous match",
			tables: []schema.Table{
				{Name: "accounts", Columns: []schema.Column{{Name: "code", Type: "text"}}, PrimaryKey: []string{"code"}},
				{Name: "regions", Columns: []schema.Column{{Name: "code", Type: "text"}}, PrimaryKey: []string{"code"}},
				{Name: "ledger", Columns: []schema.Column{{Name: "id", Type: "int"}, {Name: "code", Type: "text"}}, PrimaryKey: []string{"id"}},
			},
		},
		{
			name: "composite key members are candidates",
			tables: []schema.Table{
				{Name: "orders", Columns: []schema.Column{{Name: "id", Type: "int"}}, PrimaryKey: []string{"id"}},
				{Name: "products", Columns: []schema.Column{{Name: "id", Type: "int"}}, PrimaryKey: []string{"id"}},
				{
					Name:       "order_items",
					Columns:    []schema.Column{{Name: "order_id", Type: "int"}, {Name: "product_id", Type: "int"}},
					PrimaryKey: []string{"order_id", "product_id"},
				},
			},
			want: []string{
				"order_items.order_id -> orders.id (implied)",
				"order_items.product_id -> products.id (implied)",
			},
		},
		{
			name: "declared parent wins",
			tables: []schema.Table{
				{Name: "teams", Columns: []schema.Column{{Name: "id", Type: "int"}}, PrimaryKey: []string{"id"}},
				{Name: "squads", Columns: []schema.Column{{Name: "id", Type: "int"}}, PrimaryKey: []string{"id"}},
				{
					Name:       "players",
					Columns:    []schema.Column{{Name: "id", Type: "int"}, {Name: "team_id", Type: "int"}},
					PrimaryKey: []string{"id"},
					Relations:  []schema.Relation{{SourceColumn: "team_id", TargetTable: "squads", TargetColumn: "id"}},
				},
			},
			want: []string{"players.team_id -> squads.id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Build(&schema.Schema{Tables: tt.tables}, Options{InferImplied: true})

			var got []string
			for _, fk := range d.Constraints() {
				got = append(got, fk.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

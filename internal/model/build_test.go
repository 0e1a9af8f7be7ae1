package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/relschema/internal/schema"
)

func shopSchema() *schema.Schema {
	return &schema.Schema{
		Name: "shop",
		Tables: []schema.Table{
			{
				Name:       "orders",
				Columns:    []schema.Column{{Name: "id", Type: "integer"}, {Name: "customer_id", Type: "integer"}, {Name: "region_id", Type: "integer", Nullable: true}},
				PrimaryKey: []string{"id"},
				Relations: []schema.Relation{
					{Name: "orders_customer_fk", SourceColumn: "customer_id", TargetTable: "customers", TargetColumn: "id"},
				},
			},
			{
				Name:       "customers",
				Columns:    []schema.Column{{Name: "id", Type: "integer"}, {Name: "email", Type: "text"}},
				PrimaryKey: []string{"id"},
				Indexes:    []schema.Index{{Name: "customers_email_idx", Columns: []string{"email"}, IsUnique: true}},
			},
			{
				Name:       "regions",
				Columns:    []schema.Column{{Name: "id", Type: "integer"}, {Name: "name", Type: "text"}},
				PrimaryKey: []string{"id"},
			},
		},
	}
}

func TestBuild_LinksDeclaredRelations(t *testing.T) {
	d := Build(shopSchema(), Options{})

	orders, ok := d.Table("orders")
	require.True(t, ok)
	customers, ok := d.Table("customers")
	require.True(t, ok)

	customerID, ok := orders.Column("customer_id")
	require.True(t, ok)
	id, ok := customers.Column("id")
	require.True(t, ok)

	assert.Equal(t, []*Column{id}, customerID.Parents())
	assert.Equal(t, []*Column{customerID}, id.Children())

	fk := customerID.ParentConstraint(id)
	require.NotNil(t, fk)
	assert.Same(t, fk, id.ChildConstraint(customerID))
	assert.Equal(t, "orders_customer_fk", fk.Name)
	assert.False(t, fk.Implied)

	assert.Equal(t, 1, orders.NumParents())
	assert.Equal(t, 1, customers.NumChildren())
}

func TestBuild_ColumnFlags(t *testing.T) {
	d := Build(shopSchema(), Options{})

	customers, _ := d.Table("customers")
	email, _ := customers.Column("email")
	id, _ := customers.Column("id")
	assert.True(t, email.Indexed)
	assert.True(t, email.Unique)
	assert.True(t, id.PrimaryKey)

	orders, _ := d.Table("orders")
	region, _ := orders.Column("region_id")
	assert.True(t, region.Nullable)
}

func TestBuild_WithoutInferenceRegionsStayUnlinked(t *testing.T) {
	d := Build(shopSchema(), Options{})
	regions, _ := d.Table("regions")
	assert.Equal(t, 0, regions.NumChildren())
}

func TestBuild_InferImplied(t *testing.T) {
	d := Build(shopSchema(), Options{InferImplied: true})

	orders, _ := d.Table("orders")
	regions, _ := d.Table("regions")
	regionID, _ := orders.Column("region_id")
	id, _ := regions.Column("id")

	fk := regionID.ParentConstraint(id)
	require.NotNil(t, fk)
	assert.True(t, fk.Implied)

	// The declared relation keeps its flag
	customerID, _ := orders.Column("customer_id")
	require.Len(t, customerID.Parents(), 1)
	assert.Equal(t, "customers", customerID.Parents()[0].Table().Name)
	assert.False(t, customerID.ParentConstraint(customerID.Parents()[0]).Implied)
}

func TestBuild_DropsDanglingRelations(t *testing.T) {
	s := shopSchema()
	s.Tables[0].Relations = append(s.Tables[0].Relations,
		schema.Relation{SourceColumn: "region_id", TargetTable: "missing", TargetColumn: "id"},
		schema.Relation{SourceColumn: "nope", TargetTable: "regions", TargetColumn: "id"},
		schema.Relation{SourceColumn: "region_id", TargetTable: "regions", TargetColumn: "nope"},
	)

	d := Build(s, Options{})
	assert.Len(t, d.Constraints(), 1)
}

func TestBuild_EmptyTargetColumnUsesPrimaryKey(t *testing.T) {
	s := shopSchema()
	s.Tables[0].Relations = append(s.Tables[0].Relations,
		schema.Relation{SourceColumn: "region_id", TargetTable: "regions"},
	)

	d := Build(s, Options{})
	orders, _ := d.Table("orders")
	regionID, _ := orders.Column("region_id")
	require.Len(t, regionID.Parents(), 1)
	assert.Equal(t, "regions.id", regionID.Parents()[0].String())
}

func TestBuild_Exclusions(t *testing.T) {
	columnExclusions, err := CompileExclusion(`orders\.customer_id`)
	require.NoError(t, err)
	allExclusions, err := CompileExclusion(`.*\.region_id`)
	require.NoError(t, err)

	d := Build(shopSchema(), Options{ColumnExclusions: columnExclusions, AllExclusions: allExclusions})

	orders, _ := d.Table("orders")
	customerID, _ := orders.Column("customer_id")
	regionID, _ := orders.Column("region_id")
	id, _ := orders.Column("id")

	assert.True(t, customerID.Excluded)
	assert.False(t, customerID.AllExcluded)
	assert.True(t, regionID.AllExcluded)
	assert.False(t, id.Excluded)
	assert.ElementsMatch(t, []*Column{customerID, regionID}, d.ExcludedColumns())
}

func TestCompileExclusion(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
		wantErr bool
	}{
		{name: "empty pattern", pattern: ""},
		{name: "whole name match", pattern: `orders\.id`, input: "orders.id", want: true},
		{name: "partial match rejected", pattern: `orders\.id`, input: "orders.id_old", want: false},
		{name: "wildcard", pattern: `.*\.created_at`, input: "users.created_at", want: true},
		{name: "invalid", pattern: `(`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := CompileExclusion(tt.pattern)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.pattern == "" {
				assert.Nil(t, re)
				return
			}
			assert.Equal(t, tt.want, re.MatchString(tt.input))
		})
	}
}

// Package schema holds the flat schema description produced by the database
// extractors, before it is linked into a navigable model.
package schema

// Schema represents a complete database schema
type Schema struct {
	Name   string
	Tables []Table
}

// Table represents a database table
type Table struct {
	Schema     string
	Name       string
	Columns    []Column
	Relations  []Relation
	Indexes    []Index
	PrimaryKey []string
}

// Column represents a table column
type Column struct {
	Name         string
	Type         string
	Nullable     bool
	DefaultValue *string
	IsUnique     bool
	EnumValues   []string
}

// Relation represents a foreign key from SourceColumn of the owning table to
// TargetTable.TargetColumn. An empty TargetColumn refers to the target's
// primary key.
type Relation struct {
	Name         string
	SourceColumn string
	TargetTable  string
	TargetColumn string
	Implied      bool
}

// Index represents a database index
type Index struct {
	Name     string
	Columns  []string
	IsUnique bool
}

// FindTable returns the table with the given name, or nil.
func (s *Schema) FindTable(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// FilterTables drops every table named in exclude.
func (s *Schema) FilterTables(exclude []string) {
	if len(exclude) == 0 {
		return
	}

	excludeSet := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excludeSet[name] = true
	}

	kept := make([]Table, 0, len(s.Tables))
	for _, table := range s.Tables {
		if !excludeSet[table.Name] {
			kept = append(kept, table)
		}
	}
	s.Tables = kept
}

// Package meta loads hand-written relationship definitions that supplement
// the foreign keys declared in the database.
//
// A meta file looks like:
//
//	relationships:
//	  - table: orders
//	    column: region_code
//	    references:
//	      table: regions
//	      column: code
//	    implied: true
package meta

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/relschema/internal/schema"
)

// ErrUnknownTable is returned when a relationship names a table that is not
// part of the extracted schema.
var ErrUnknownTable = errors.New("unknown table")

// File is the top level of a meta file.
type File struct {
	Relationships []Relationship `yaml:"relationships"`
}

// Relationship is one extra foreign key.
type Relationship struct {
	Name       string    `yaml:"name"`
	Table      string    `yaml:"table"`
	Column     string    `yaml:"column"`
	References Reference `yaml:"references"`
	Implied    bool      `yaml:"implied"`
}

// Reference is the referenced end of a Relationship. An empty Column means
// the referenced table's primary key.
type Reference struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
}

// Load reads and parses a meta file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read meta file: %w", err)
	}
	return Parse(data)
}

// Parse decodes meta file contents and checks required fields.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse meta file: %w", err)
	}
	for i, rel := range f.Relationships {
		if rel.Table == "" || rel.Column == "" || rel.References.Table == "" {
			return nil, fmt.Errorf("relationship %d: table, column and references.table are required", i+1)
		}
	}
	return &f, nil
}

// Apply adds the relationships to s. Every referenced table must exist.
func (f *File) Apply(s *schema.Schema) error {
	for _, rel := range f.Relationships {
		child := s.FindTable(rel.Table)
		if child == nil {
			return fmt.Errorf("relationship %s.%s: %w %s", rel.Table, rel.Column, ErrUnknownTable, rel.Table)
		}
		if s.FindTable(rel.References.Table) == nil {
			return fmt.Errorf("relationship %s.%s: %w %s", rel.Table, rel.Column, ErrUnknownTable, rel.References.Table)
		}
		child.Relations = append(child.Relations, schema.Relation{
			Name:         rel.Name,
			SourceColumn: rel.Column,
			TargetTable:  rel.References.Table,
			TargetColumn: rel.References.Column,
			Implied:      rel.Implied,
		})
	}
	return nil
}

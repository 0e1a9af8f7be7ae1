package db

import (
	"context"
	"fmt"

	"github.com/tordrt/relschema/internal/schema"
)

// Extractor reads table metadata from a live database.
type Extractor interface {
	// ExtractSchema reads the named tables, or every base table when tables
	// is empty.
	ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error)
}

// tableReader is the dialect specific part of an Extractor.
type tableReader interface {
	tableNames(ctx context.Context) ([]string, error)
	// columns returns the columns in ordinal order and the primary key
	// columns in key order.
	columns(ctx context.Context, table string) ([]schema.Column, []string, error)
	relations(ctx context.Context, table string) ([]schema.Relation, error)
	indexes(ctx context.Context, table string) ([]schema.Index, error)
}

// readSchema extracts the requested tables, or all of them, through r.
func readSchema(ctx context.Context, r tableReader, schemaName string, requested []string) (*schema.Schema, error) {
	names := requested
	if len(names) == 0 {
		var err error
		names, err = r.tableNames(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get table names: %w", err)
		}
	}

	s := &schema.Schema{Name: schemaName}
	for _, name := range names {
		table, err := readTable(ctx, r, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		s.Tables = append(s.Tables, *table)
	}
	return s, nil
}

func readTable(ctx context.Context, r tableReader, name string) (*schema.Table, error) {
	table := &schema.Table{Name: name}

	columns, pk, err := r.columns(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	table.Columns = columns
	table.PrimaryKey = pk

	relations, err := r.relations(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract relations: %w", err)
	}
	table.Relations = relations

	indexes, err := r.indexes(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	table.Indexes = indexes

	return table, nil
}

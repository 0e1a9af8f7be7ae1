package db

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/tordrt/relschema/internal/schema"
)

// SQLiteExtractor reads the main database of a SQLite file.
type SQLiteExtractor struct {
	db *sql.DB
}

// NewSQLiteExtractor creates an extractor over db.
func NewSQLiteExtractor(db *sql.DB) *SQLiteExtractor {
	return &SQLiteExtractor{db: db}
}

// ExtractSchema reads the named tables, or every user table.
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	return readSchema(ctx, e, SQLiteSchema, tables)
}

func (e *SQLiteExtractor) tableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	return queryStrings(ctx, e.db, query)
}

// quoteIdent quotes a table or index name for use in a PRAGMA.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (e *SQLiteExtractor) columns(ctx context.Context, table string) ([]schema.Column, []string, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	type keyPart struct {
		pos  int
		name string
	}
	var columns []schema.Column
	var key []keyPart
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, err
		}
		col := schema.Column{Name: name, Type: colType, Nullable: notNull == 0}
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		// pk is the column's 1-based position in the primary key.
		if pk > 0 {
			key = append(key, keyPart{pos: pk, name: name})
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(key, func(i, j int) bool { return key[i].pos < key[j].pos })
	var pk []string
	for _, k := range key {
		pk = append(pk, k.name)
	}
	return columns, pk, nil
}

func (e *SQLiteExtractor) relations(ctx context.Context, table string) ([]schema.Relation, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []schema.Relation
	for rows.Next() {
		var id, seq int
		var target, from, onUpdate, onDelete, match string
		// to is NULL when the constraint references the parent's primary key.
		var to sql.NullString

		if err := rows.Scan(&id, &seq, &target, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		relations = append(relations, schema.Relation{
			SourceColumn: from,
			TargetTable:  target,
			TargetColumn: to.String,
		})
	}
	return relations, rows.Err()
}

func (e *SQLiteExtractor) indexes(ctx context.Context, table string) ([]schema.Index, error) {
	listed, err := e.indexList(ctx, table)
	if err != nil {
		return nil, err
	}

	var indexes []schema.Index
	for _, idx := range listed {
		columns, err := e.indexColumns(ctx, idx.Name)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			continue
		}
		idx.Columns = columns
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

// indexList returns the table's indexes without their columns. Indexes
// backing the primary key are skipped.
func (e *SQLiteExtractor) indexList(ctx context.Context, table string) ([]schema.Index, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA index_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Index
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		if origin == "pk" {
			continue
		}
		out = append(out, schema.Index{Name: name, IsUnique: unique == 1})
	}
	return out, rows.Err()
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA index_info("+quoteIdent(index)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		// name is NULL for expression columns.
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			columns = append(columns, name.String)
		}
	}
	return columns, rows.Err()
}

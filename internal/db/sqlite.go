package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSchema is the name SQLite gives the main database.
const SQLiteSchema = "main"

// SQLiteClient reads a SQLite database file.
type SQLiteClient struct {
	db *sql.DB
}

// sqliteDSN opens path read-only, so a mistyped path fails instead of
// creating an empty database.
func sqliteDSN(path string) string {
	return "file:" + path + "?mode=ro"
}

// NewSQLiteClient opens the existing database file at path read-only.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return &SQLiteClient{db: db}, nil
}

func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB exposes the handle to the extractor.
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DefaultPostgresSchema is read when no schema is configured.
const DefaultPostgresSchema = "public"

const postgresApplicationName = "relschema"

// PostgresClient is a catalog-reading PostgreSQL session.
type PostgresClient struct {
	conn *pgx.Conn
}

// postgresConfig parses connString into a session that names itself and
// runs every transaction read-only. An application_name in connString wins.
func postgresConfig(connString string) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if _, ok := cfg.RuntimeParams["application_name"]; !ok {
		cfg.RuntimeParams["application_name"] = postgresApplicationName
	}
	cfg.RuntimeParams["default_transaction_read_only"] = "on"
	return cfg, nil
}

// NewPostgresClient connects to connString and checks the connection.
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	cfg, err := postgresConfig(connString)
	if err != nil {
		return nil, err
	}
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresClient{conn: conn}, nil
}

func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection exposes the session to the extractor.
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}

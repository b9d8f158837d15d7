package postgres

import (
	"context"
	"database/sql"
)

// Client is the inventory database connection. The importer writes
// datasets through it in bulk; an agent reads its dataset once at
// startup and never touches Postgres again.
type Client interface {
	// Connect opens the connection pool and verifies it with a ping.
	Connect(ctx context.Context) error

	// Disconnect closes the pool.
	Disconnect() error

	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

	// Query runs a statement that returns rows.
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

	// QueryRow runs a statement expected to return at most one row.
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row

	// Transaction runs fn inside a transaction and rolls back when
	// fn returns an error.
	Transaction(ctx context.Context, fn func(*sql.Tx) error) error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// HealthCheck reports connection and pool state for the health
	// endpoint. The error return is reserved for serialization
	// problems; a broken database comes back inside the status.
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}

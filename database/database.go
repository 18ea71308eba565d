// Package database defines the contract every concrete backend must
// satisfy and the orchestrator that executes migration plans against
// it. Concrete backends live in subpackages and register themselves
// under their connection-string scheme.
package database

import (
	"context"
)

// DefaultMigrationTable is the bookkeeping table used when the caller
// does not configure one.
const DefaultMigrationTable = "migrations"

// Connection is the capability set the orchestrator needs from a
// backend: scoped transactional execution, a tabular query, a plain
// exec, and the four dialect-specific statements for the bookkeeping
// table. Each backend owns its own quoting and parameter syntax.
type Connection interface {
	// Transaction runs work inside one transaction scoped to the
	// callback. It commits when work returns nil, otherwise it rolls
	// back and propagates the failure.
	Transaction(ctx context.Context, work func(Connection) error) error

	// Query runs a read and returns rows as field-name to value maps.
	Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error)

	// Exec runs a write or DDL statement with no result rows.
	Exec(ctx context.Context, query string, args ...interface{}) error

	CreateMigrationTableSQL(table string) string
	ListMigrationsSQL(table string) string
	InsertMigrationSQL(table string) string
	DeleteMigrationSQL(table string) string
}

// ReleaseFunc returns an acquired connection to its pool. It must be
// called on every exit path, including failure.
type ReleaseFunc func() error

// Pool hands out scoped connections.
type Pool interface {
	Acquire(ctx context.Context) (Connection, ReleaseFunc, error)
	Close() error
}

// Driver creates a connection pool from a connection string.
type Driver interface {
	CreatePool(ctx context.Context, dsn string) (Pool, error)
}

// Package postgres registers the PostgreSQL backend under the
// postgres and postgresql schemes. Importing it for side effects is
// enough to enable it.
package postgres

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/sqlshift/sqlshift/database"
	"github.com/sqlshift/sqlshift/internal/sqlgateway"
)

func init() {
	database.Register("postgres", &Driver{})
	database.Register("postgresql", &Driver{})
}

type Driver struct {
	ConnectOptions *sqlgateway.ConnectOptions
}

var _ database.Driver = (*Driver)(nil)

// CreatePool opens a pgx-backed pool. The pgx stdlib driver accepts
// the URL form of the DSN directly.
func (d *Driver) CreatePool(_ context.Context, dsn string) (database.Pool, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "could not open postgres connection pool")
	}

	return sqlgateway.NewPool(db, Dialect{}, d.ConnectOptions), nil
}

// Dialect owns the PostgreSQL bookkeeping-table SQL.
type Dialect struct{}

var _ sqlgateway.Dialect = Dialect{}

func (Dialect) CreateMigrationTableSQL(table string) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (name text PRIMARY KEY, apply_time timestamp with time zone NOT NULL DEFAULT now())",
		quoteIdentifier(table),
	)
}

func (Dialect) ListMigrationsSQL(table string) string {
	return fmt.Sprintf("SELECT name, apply_time FROM %s ORDER BY name", quoteIdentifier(table))
}

func (Dialect) InsertMigrationSQL(table string) string {
	return fmt.Sprintf("INSERT INTO %s (name) VALUES ($1)", quoteIdentifier(table))
}

func (Dialect) DeleteMigrationSQL(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE name = $1", quoteIdentifier(table))
}

// quoteIdentifier acts like PostgreSQL's quote_ident built-in but
// always wraps the identifier in double quotes.
func quoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// Package sqlite registers the SQLite backend under the sqlite,
// sqlite3 and file schemes. Importing it for side effects is enough to
// enable it.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/xo/dburl"

	"github.com/sqlshift/sqlshift/database"
	"github.com/sqlshift/sqlshift/internal/sqlgateway"
)

func init() {
	database.Register("sqlite", &Driver{})
	database.Register("sqlite3", &Driver{})
	database.Register("file", &Driver{})
}

type Driver struct {
	ConnectOptions *sqlgateway.ConnectOptions
}

var _ database.Driver = (*Driver)(nil)

// CreatePool extracts the file path from the URL form via dburl.
func (d *Driver) CreatePool(_ context.Context, dsn string) (database.Pool, error) {
	u, err := dburl.Parse(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse sqlite url")
	}

	db, err := sqlx.Open("sqlite3", u.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "could not open sqlite database")
	}

	return sqlgateway.NewPool(db, Dialect{}, d.ConnectOptions), nil
}

// Dialect owns the SQLite bookkeeping-table SQL.
type Dialect struct{}

var _ sqlgateway.Dialect = Dialect{}

func (Dialect) CreateMigrationTableSQL(table string) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, apply_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)",
		quoteIdentifier(table),
	)
}

func (Dialect) ListMigrationsSQL(table string) string {
	return fmt.Sprintf("SELECT name, apply_time FROM %s ORDER BY name", quoteIdentifier(table))
}

func (Dialect) InsertMigrationSQL(table string) string {
	return fmt.Sprintf("INSERT INTO %s (name) VALUES (?)", quoteIdentifier(table))
}

func (Dialect) DeleteMigrationSQL(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE name = ?", quoteIdentifier(table))
}

func quoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

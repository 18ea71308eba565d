// Package mysql registers the MySQL backend under the mysql scheme.
// Importing it for side effects is enough to enable it.
package mysql

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/xo/dburl"

	"github.com/sqlshift/sqlshift/database"
	"github.com/sqlshift/sqlshift/internal/sqlgateway"
)

func init() {
	database.Register("mysql", &Driver{})
}

type Driver struct {
	ConnectOptions *sqlgateway.ConnectOptions
}

var _ database.Driver = (*Driver)(nil)

// CreatePool converts the URL form into the go-sql-driver DSN via
// dburl. parseTime is forced on so apply_time scans into time.Time.
func (d *Driver) CreatePool(_ context.Context, dsn string) (database.Pool, error) {
	u, err := dburl.Parse(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse mysql url")
	}

	db, err := sqlx.Open("mysql", withParseTime(u.DSN))
	if err != nil {
		return nil, errors.Wrap(err, "could not open mysql connection pool")
	}

	return sqlgateway.NewPool(db, Dialect{}, d.ConnectOptions), nil
}

func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}

	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}

	return dsn + "?parseTime=true"
}

// Dialect owns the MySQL bookkeeping-table SQL.
type Dialect struct{}

var _ sqlgateway.Dialect = Dialect{}

func (Dialect) CreateMigrationTableSQL(table string) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (name VARCHAR(255) PRIMARY KEY, apply_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP) ENGINE=InnoDB",
		quoteIdentifier(table),
	)
}

func (Dialect) ListMigrationsSQL(table string) string {
	return fmt.Sprintf("SELECT `name`, `apply_time` FROM %s ORDER BY `name`", quoteIdentifier(table))
}

func (Dialect) InsertMigrationSQL(table string) string {
	return fmt.Sprintf("INSERT INTO %s (`name`) VALUES (?)", quoteIdentifier(table))
}

func (Dialect) DeleteMigrationSQL(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE `name` = ?", quoteIdentifier(table))
}

func quoteIdentifier(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

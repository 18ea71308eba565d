// Package sqlgateway implements the database contract on top of sqlx
// for any database/sql driver. Backend packages supply a Dialect that
// owns the bookkeeping-table SQL for their engine.
package sqlgateway

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/sqlshift/sqlshift/database"
	"github.com/sqlshift/sqlshift/internal/logger"
)

var ErrNestedTransaction = errors.New("a transaction is already in progress")

// Dialect owns the engine-specific SQL for the bookkeeping table:
// quoting and parameter placeholders differ per engine.
type Dialect interface {
	CreateMigrationTableSQL(table string) string
	ListMigrationsSQL(table string) string
	InsertMigrationSQL(table string) string
	DeleteMigrationSQL(table string) string
}

// ctxExecutor is the slice of sqlx shared by *sqlx.Conn and *sqlx.Tx,
// so one gateway serves both pooled and in-transaction execution.
type ctxExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
}

type txStarter interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type Conn struct {
	ex      ctxExecutor
	dialect Dialect
	lg      logger.Logger
}

var _ database.Connection = (*Conn)(nil)

func NewConn(ex ctxExecutor, dialect Dialect, lg logger.Logger) *Conn {
	if lg == nil {
		lg = &logger.NullLogger{}
	}

	return &Conn{ex: ex, dialect: dialect, lg: lg}
}

func (c *Conn) Transaction(ctx context.Context, work func(database.Connection) error) error {
	starter, ok := c.ex.(txStarter)
	if !ok {
		return ErrNestedTransaction
	}

	tx, err := starter.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}

	if err := work(&Conn{ex: tx, dialect: c.dialect, lg: c.lg}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "could not rollback transaction: %s", rbErr.Error())
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "could not commit transaction")
	}

	return nil
}

func (c *Conn) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	c.lg.SQL(query, args...)

	rows, err := c.ex.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "could not run query [%s]", query)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			c.lg.Error(closeErr)
		}
	}()

	var result []map[string]interface{}
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, errors.Wrapf(err, "could not scan row of query [%s]", query)
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "query [%s] iteration failed", query)
	}

	return result, nil
}

func (c *Conn) Exec(ctx context.Context, query string, args ...interface{}) error {
	c.lg.SQL(query, args...)

	if _, err := c.ex.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "could not execute [%s]", query)
	}

	return nil
}

func (c *Conn) CreateMigrationTableSQL(table string) string {
	return c.dialect.CreateMigrationTableSQL(table)
}

func (c *Conn) ListMigrationsSQL(table string) string {
	return c.dialect.ListMigrationsSQL(table)
}

func (c *Conn) InsertMigrationSQL(table string) string {
	return c.dialect.InsertMigrationSQL(table)
}

func (c *Conn) DeleteMigrationSQL(table string) string {
	return c.dialect.DeleteMigrationSQL(table)
}

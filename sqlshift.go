// Package sqlshift applies and reverts ordered, named SQL schema
// migrations against a database, tracking which have run in a
// bookkeeping table. Backends register per connection-string scheme;
// import the subpackages of database for the ones you need.
package sqlshift

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sqlshift/sqlshift/database"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/migration"
	"github.com/sqlshift/sqlshift/source"
)

var ErrPoolNotInitialized = errors.New("database pool has not been initialized")

type CloserFunc func() error

// Migrator ties a migration source to a database backend and drives
// apply, rollback and status runs over them.
type Migrator struct {
	lg    logger.Logger
	pool  database.Pool
	src   source.Source
	table string
}

// New creates a migrator from option callbacks; a database pool option
// is required, everything else has defaults: the ./migrations folder
// as source, the migrations bookkeeping table, no logging.
func New(opts ...OptionFunc) (*Migrator, CloserFunc, error) {
	m := &Migrator{
		lg:    &logger.NullLogger{},
		table: database.DefaultMigrationTable,
	}

	for _, oFunc := range opts {
		if err := oFunc(m); err != nil {
			return nil, nil, err
		}
	}

	if m.pool == nil {
		return nil, nil, ErrPoolNotInitialized
	}

	if m.src == nil {
		m.src = source.NewDir(source.DefaultMigrationsFolder, m.lg)
	}

	if lp, ok := m.pool.(interface{ SetLogger(logger.Logger) }); ok {
		lp.SetLogger(m.lg)
	}

	return m, m.close, nil
}

// Up applies pending migrations in name order and returns how many
// were applied.
func (m *Migrator) Up(ctx context.Context, cfs ...ActionConfigurator) (int, error) {
	act := newAction(cfs)
	return m.run(ctx, migration.Options{Direction: migration.Up, Limit: act.limit})
}

// Down rolls applied migrations back, most recent first, and returns
// how many were rolled back.
func (m *Migrator) Down(ctx context.Context, cfs ...ActionConfigurator) (int, error) {
	act := newAction(cfs)
	return m.run(ctx, migration.Options{Direction: migration.Down, Limit: act.limit})
}

// Status returns every known and applied migration in name order,
// applied records carrying their apply time.
func (m *Migrator) Status(ctx context.Context) (migration.Migrations, error) {
	known, err := m.src.Load(ctx)
	if err != nil {
		m.lg.Error(err)
		return nil, err
	}

	conn, release, err := m.pool.Acquire(ctx)
	if err != nil {
		m.lg.Error(err)
		return nil, err
	}

	defer func() {
		if releaseErr := release(); releaseErr != nil {
			m.lg.Error(releaseErr)
		}
	}()

	result, err := database.List(ctx, conn, m.table, known)
	if err != nil {
		m.lg.Error(err)
		return nil, err
	}

	return result, nil
}

func (m *Migrator) run(ctx context.Context, options migration.Options) (int, error) {
	known, err := m.src.Load(ctx)
	if err != nil {
		m.lg.Error(err)
		return 0, err
	}

	conn, release, err := m.pool.Acquire(ctx)
	if err != nil {
		m.lg.Error(err)
		return 0, err
	}

	defer func() {
		if releaseErr := release(); releaseErr != nil {
			m.lg.Error(releaseErr)
		}
	}()

	processed, err := database.Apply(ctx, conn, m.table, options, known)
	if err != nil {
		m.lg.Error(err)
		return processed, err
	}

	m.lg.Successf("processed %d migrations %s", processed, options.Direction)

	return processed, nil
}

func (m *Migrator) close() error {
	if m.pool == nil {
		return ErrPoolNotInitialized
	}

	if err := m.pool.Close(); err != nil {
		m.lg.Error(err)
		return err
	}

	return nil
}

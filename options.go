package sqlshift

import (
	"context"

	"github.com/sqlshift/sqlshift/database"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/migration"
	"github.com/sqlshift/sqlshift/source"
)

type OptionFunc func(*Migrator) error

// UseDSN resolves a registered backend by the connection-string scheme
// and creates its pool. The matching backend package must be imported,
// a blank import is enough.
func UseDSN(dsn string) OptionFunc {
	return func(m *Migrator) error {
		driver, err := database.Resolve(dsn)
		if err != nil {
			return err
		}

		pool, err := driver.CreatePool(context.Background(), dsn)
		if err != nil {
			return err
		}

		m.pool = pool
		return nil
	}
}

// UsePool injects a ready-made backend pool.
func UsePool(pool database.Pool) OptionFunc {
	return func(m *Migrator) error {
		m.pool = pool
		return nil
	}
}

// UseSource injects a migration source.
func UseSource(src source.Source) OptionFunc {
	return func(m *Migrator) error {
		m.src = src
		return nil
	}
}

// UseLocalDir loads migrations from the given local folder.
func UseLocalDir(folder string) OptionFunc {
	return func(m *Migrator) error {
		m.src = source.NewDir(folder, m.lg)
		return nil
	}
}

// UseTable overrides the bookkeeping table name.
func UseTable(table string) OptionFunc {
	return func(m *Migrator) error {
		if table != "" {
			m.table = table
		}
		return nil
	}
}

// UseColorLogger logs progress through p with aurora colors.
func UseColorLogger(p logger.Printer, printSQL, printDebug bool) OptionFunc {
	return func(m *Migrator) error {
		m.lg = logger.NewColorLogger(p, printSQL, printDebug)
		return nil
	}
}

// UseLogger logs progress through p without colors.
func UseLogger(p logger.Printer, printSQL, printDebug bool) OptionFunc {
	return func(m *Migrator) error {
		m.lg = logger.NewBWLogger(p, printSQL, printDebug)
		return nil
	}
}

type action struct {
	limit int
}

type ActionConfigurator func(*action)

func newAction(cfs []ActionConfigurator) *action {
	act := &action{limit: migration.NoLimit}
	for _, f := range cfs {
		f(act)
	}

	return act
}

// WithLimit caps how many migrations a single run may process.
func WithLimit(limit int) ActionConfigurator {
	return func(a *action) {
		if limit >= 0 {
			a.limit = limit
		}
	}
}

package sqlgateway

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/sqlshift/sqlshift/database"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/internal/retry"
)

const (
	DefaultConnectionAttempts = 30
	DefaultConnectionStep     = 2 * time.Second
)

type ConnectOptions struct {
	MaxAttempts int
	RetryStep   time.Duration
}

func NewDefaultConnectOptions() *ConnectOptions {
	return &ConnectOptions{
		MaxAttempts: DefaultConnectionAttempts,
		RetryStep:   DefaultConnectionStep,
	}
}

// Pool hands out gateway connections backed by the sql.DB pool. The
// first acquisition pings with incremental backoff so that a database
// still starting up does not fail the run immediately.
type Pool struct {
	db      *sqlx.DB
	dialect Dialect
	lg      logger.Logger
	connect *ConnectOptions
}

var _ database.Pool = (*Pool)(nil)

func NewPool(db *sqlx.DB, dialect Dialect, connect *ConnectOptions) *Pool {
	if connect == nil {
		connect = NewDefaultConnectOptions()
	}

	return &Pool{
		db:      db,
		dialect: dialect,
		lg:      &logger.NullLogger{},
		connect: connect,
	}
}

func (p *Pool) SetLogger(lg logger.Logger) {
	if lg != nil {
		p.lg = lg
	}
}

func (p *Pool) Acquire(ctx context.Context) (database.Connection, database.ReleaseFunc, error) {
	err := retry.Incremental(ctx, p.connect.RetryStep, p.connect.MaxAttempts, func(attempt int) error {
		if err := p.db.PingContext(ctx); err != nil {
			p.lg.Debugf("database ping attempt %d failed: %s", attempt, err)
			return retry.Error(errors.Wrap(err, "could not establish database connection"), attempt)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	conn, err := p.db.Connx(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not acquire connection from the pool")
	}

	release := func() error {
		if closeErr := conn.Close(); closeErr != nil {
			return errors.Wrap(closeErr, "could not release connection")
		}

		return nil
	}

	return NewConn(conn, p.dialect, p.lg), release, nil
}

func (p *Pool) Close() error {
	if err := p.db.Close(); err != nil {
		return errors.Wrap(err, "could not close database pool")
	}

	return nil
}

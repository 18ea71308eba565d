// Package cli wires the migrator into the command line tool: yaml
// configuration, the three commands and the status table rendering.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/sqlshift/sqlshift"
	"github.com/sqlshift/sqlshift/database"
	"github.com/sqlshift/sqlshift/migration"
	"github.com/sqlshift/sqlshift/source"
)

var ErrFolderInvalid = errors.New("migrations folder is invalid")

type (
	CloserFunc func() error

	Config struct {
		DatabaseURL      string
		MigrationsFolder string
		MigrationsTable  string
	}

	App struct {
		migrator *sqlshift.Migrator
	}
)

const appliedTimeLayout = "2006-01-02 15:04:05-07:00"

func NewFromYaml(path string) (*App, CloserFunc, error) {
	cfg, err := createConfigFromYaml(path)
	if err != nil {
		return nil, nil, err
	}

	return New(cfg)
}

func New(cfg Config) (*App, CloserFunc, error) {
	if cfg.MigrationsFolder == "" {
		cfg.MigrationsFolder = "./migrations"
	}

	if cfg.MigrationsTable == "" {
		cfg.MigrationsTable = database.DefaultMigrationTable
	}

	if !source.NewDir(cfg.MigrationsFolder, nil).IsValid() {
		return nil, nil, errors.Wrapf(ErrFolderInvalid, "[%s]", cfg.MigrationsFolder)
	}

	m, closer, err := sqlshift.New(
		sqlshift.UseColorLogger(log.New(os.Stdout, "", 0), true, false),
		sqlshift.UseDSN(cfg.DatabaseURL),
		sqlshift.UseLocalDir(cfg.MigrationsFolder),
		sqlshift.UseTable(cfg.MigrationsTable),
	)
	if err != nil {
		return nil, nil, err
	}

	return &App{migrator: m}, CloserFunc(closer), nil
}

// Up applies pending migrations, all of them when limit is 0.
func (app *App) Up(ctx context.Context, w io.Writer, limit int) error {
	n, err := app.migrator.Up(ctx, limitConfigurator(limit))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Applied %d migrations\n", n)
	return nil
}

// Down rolls migrations back, all of them when limit is 0.
func (app *App) Down(ctx context.Context, w io.Writer, limit int) error {
	n, err := app.migrator.Down(ctx, limitConfigurator(limit))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Applied %d migrations\n", n)
	return nil
}

// Status renders the migration table: every migration by name with its
// apply time, or "no" when it is still pending.
func (app *App) Status(ctx context.Context, w io.Writer) error {
	migrations, err := app.migrator.Status(ctx)
	if err != nil {
		return err
	}

	rows := make([][2]string, 0, len(migrations))
	for _, m := range migrations {
		applied := "no"
		if m.Status == migration.StatusApplied {
			applied = m.AppliedAt.Format(appliedTimeLayout)
		}

		rows = append(rows, [2]string{m.Name, applied})
	}

	renderTwoColTable(w, [2]string{"MIGRATION", "APPLIED"}, rows)
	return nil
}

// limit 0 on the command line means unlimited
func limitConfigurator(limit int) sqlshift.ActionConfigurator {
	if limit == 0 {
		return sqlshift.WithLimit(migration.NoLimit)
	}

	return sqlshift.WithLimit(limit)
}

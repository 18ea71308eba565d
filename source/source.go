// Package source loads migrations from a location: a local folder, an
// fs.FS (including embed.FS), or memory. Loading happens once per run
// before planning; any failure is fatal and surfaced verbatim.
package source

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sqlshift/sqlshift/migration"
)

const DefaultMigrationsFolder = "./migrations"

const sqlExtension = ".sql"

var ErrNoMigrations = errors.New("no migrations")

// Source yields the full set of known migrations, sorted by name.
type Source interface {
	Load(ctx context.Context) (migration.Migrations, error)
}

package source

import (
	"context"
	"sort"

	"github.com/sqlshift/sqlshift/migration"
)

// InMemory serves a fixed migration set, mostly useful for tests and
// for library callers that build migrations programmatically.
type InMemory struct {
	migrations migration.Migrations
}

var _ Source = (*InMemory)(nil)

func NewInMemory(migrations ...*migration.Migration) *InMemory {
	return &InMemory{migrations: migrations}
}

func (s *InMemory) Load(_ context.Context) (migration.Migrations, error) {
	if s.migrations == nil {
		return nil, ErrNoMigrations
	}

	result := make(migration.Migrations, len(s.migrations))
	copy(result, s.migrations)
	sort.Sort(result)

	return result, nil
}

package source

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlshift/sqlshift/migration"
)

const stubsFolder = "./testdata/migrations"

func Test_DirLoadsAllMigrationsSorted(t *testing.T) {
	d := NewDir(stubsFolder, nil)
	require.True(t, d.IsValid())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	migrations, err := d.Load(ctx)
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, []string{
		"1596897167_create_foo_table.sql",
		"1596897188_create_bar_table.sql",
		"1597897177_add_count_proc.sql",
	}, migrations.Names())

	foo := migrations[0]
	assert.Equal(t, migration.StatusUnapplied, foo.Status)
	assert.Equal(t, []string{"CREATE TABLE IF NOT EXISTS foo (id binary(16) PRIMARY KEY);\n"}, foo.UpStatements)
	assert.Equal(t, []string{"DROP TABLE IF EXISTS foo;\n"}, foo.DownStatements)

	bar := migrations[1]
	assert.True(t, bar.DisableTransactionsUp)
	assert.False(t, bar.DisableTransactionsDown)
	assert.Len(t, bar.UpStatements, 2)

	proc := migrations[2]
	require.Len(t, proc.UpStatements, 1)
	assert.Contains(t, proc.UpStatements[0], "RETURN (SELECT count(*) FROM foo);")
}

func Test_DirLoadFailsOnCancelledContext(t *testing.T) {
	d := NewDir(stubsFolder, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_DirLoadFailsOnMissingFolder(t *testing.T) {
	d := NewDir("./testdata/no_such_folder", nil)
	assert.False(t, d.IsValid())

	_, err := d.Load(context.Background())
	assert.Error(t, err)
}

func Test_FSLoadsFromAnyFilesystem(t *testing.T) {
	s := NewFS(os.DirFS("./testdata"), "migrations")

	migrations, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, "1596897167_create_foo_table.sql", migrations[0].Name)
	assert.Equal(t, "1597897177_add_count_proc.sql", migrations[2].Name)
}

func Test_InMemoryServesSortedCopies(t *testing.T) {
	b := migration.New("0002_b.sql")
	a := migration.New("0001_a.sql")

	s := NewInMemory(b, a)

	migrations, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.sql", "0002_b.sql"}, migrations.Names())
}

func Test_InMemoryWithoutMigrationsFails(t *testing.T) {
	s := NewInMemory()

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoMigrations)
}

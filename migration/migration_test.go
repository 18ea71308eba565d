package migration

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_MigrationsCanBeSortedByName(t *testing.T) {
	m1 := New("1596897167_create_foo_table.sql")
	m2 := New("1586897167_create_bar_table.sql")
	m3 := New("1597897167_create_baz_table.sql")

	migrations := Migrations{m1, m2, m3}
	sort.Sort(migrations)

	assert.Equal(t, []string{
		"1586897167_create_bar_table.sql",
		"1596897167_create_foo_table.sql",
		"1597897167_create_baz_table.sql",
	}, migrations.Names())
}

func Test_AppliedAtIsNormalizedToUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	local := time.Date(2021, 7, 14, 8, 30, 0, 0, loc)
	m := NewApplied("0001_init.sql", local)

	assert.True(t, m.Applied())
	assert.Equal(t, time.UTC, m.AppliedAt.Location())
	assert.True(t, m.AppliedAt.Equal(local))
}

func Test_StatementsFollowDirection(t *testing.T) {
	m := New("0001_init.sql")
	m.UpStatements = []string{"CREATE TABLE foo (id int);\n"}
	m.DownStatements = []string{"DROP TABLE foo;\n"}
	m.DisableTransactionsDown = true

	assert.Equal(t, m.UpStatements, m.Statements(Up))
	assert.Equal(t, m.DownStatements, m.Statements(Down))
	assert.False(t, m.TransactionsDisabled(Up))
	assert.True(t, m.TransactionsDisabled(Down))
}

func Test_DirectionString(t *testing.T) {
	assert.Equal(t, "up", Up.String())
	assert.Equal(t, "down", Down.String())
	assert.Equal(t, "unknown", Direction(0).String())
}

package plan

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlshift/sqlshift/migration"
)

func knownMigration(name string) *migration.Migration {
	m := migration.New(name)
	m.UpStatements = []string{fmt.Sprintf("CREATE TABLE %q (id int);\n", name)}
	m.DownStatements = []string{fmt.Sprintf("DROP TABLE %q;\n", name)}
	return m
}

func appliedMigration(name string) *migration.Migration {
	return migration.NewApplied(name, time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC))
}

func Test_NothingAppliedYet(t *testing.T) {
	known := migration.Migrations{
		knownMigration("0002_b.sql"),
		knownMigration("0001_a.sql"),
		knownMigration("0003_c.sql"),
	}

	t.Run("up returns everything sorted ascending", func(t *testing.T) {
		result, err := Migrations(known, nil, migration.Up, migration.NoLimit)
		require.NoError(t, err)
		assert.Equal(t, []string{"0001_a.sql", "0002_b.sql", "0003_c.sql"}, result.Names())
	})

	t.Run("down returns nothing to roll back", func(t *testing.T) {
		result, err := Migrations(known, nil, migration.Down, migration.NoLimit)
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("single known migration plans exactly itself", func(t *testing.T) {
		single := migration.Migrations{knownMigration("0001_a.sql")}
		result, err := Migrations(single, nil, migration.Up, migration.NoLimit)
		require.NoError(t, err)
		assert.Equal(t, []string{"0001_a.sql"}, result.Names())
	})
}

func Test_UpSkipsAlreadyApplied(t *testing.T) {
	known := migration.Migrations{
		knownMigration("0001_a.sql"),
		knownMigration("0002_b.sql"),
		knownMigration("0003_c.sql"),
	}
	applied := migration.Migrations{
		appliedMigration("0001_a.sql"),
		appliedMigration("0002_b.sql"),
	}

	result, err := Migrations(known, applied, migration.Up, migration.NoLimit)
	require.NoError(t, err)
	assert.Equal(t, []string{"0003_c.sql"}, result.Names())
}

func Test_DownRollsBackMostRecentFirst(t *testing.T) {
	known := migration.Migrations{
		knownMigration("0001_a.sql"),
		knownMigration("0002_b.sql"),
		knownMigration("0003_c.sql"),
	}
	applied := migration.Migrations{
		appliedMigration("0001_a.sql"),
		appliedMigration("0002_b.sql"),
		appliedMigration("0003_c.sql"),
	}

	result, err := Migrations(known, applied, migration.Down, migration.NoLimit)
	require.NoError(t, err)
	assert.Equal(t, []string{"0003_c.sql", "0002_b.sql", "0001_a.sql"}, result.Names())

	// the down plan carries the statement groups from source, not the
	// bare applied records
	assert.NotEmpty(t, result[0].DownStatements)
}

func Test_UnknownAppliedMigrationsFailPlanning(t *testing.T) {
	known := migration.Migrations{knownMigration("0001_a.sql")}
	applied := migration.Migrations{
		appliedMigration("0001_a.sql"),
		appliedMigration("0009_gone.sql"),
		appliedMigration("0008_also_gone.sql"),
	}

	result, err := Migrations(known, applied, migration.Up, migration.NoLimit)
	assert.Nil(t, result)
	require.Error(t, err)

	var unknownErr *UnknownAppliedError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, []string{"0008_also_gone.sql", "0009_gone.sql"}, unknownErr.Names)
}

func Test_OutOfOrderHistoryFailsPlanning(t *testing.T) {
	known := migration.Migrations{
		knownMigration("0001_a.sql"),
		knownMigration("0002_b.sql"),
	}
	applied := migration.Migrations{appliedMigration("0002_b.sql")}

	for _, direction := range []migration.Direction{migration.Up, migration.Down} {
		t.Run(direction.String(), func(t *testing.T) {
			result, err := Migrations(known, applied, direction, migration.NoLimit)
			assert.Nil(t, result)
			require.Error(t, err)

			var orderErr *InvalidOrderError
			require.ErrorAs(t, err, &orderErr)
			assert.Equal(t, "0002_b.sql", orderErr.LastApplied)
			assert.Equal(t, "0001_a.sql", orderErr.FirstUnapplied)
		})
	}
}

func Test_LimitSemantics(t *testing.T) {
	known := migration.Migrations{
		knownMigration("0001_a.sql"),
		knownMigration("0002_b.sql"),
		knownMigration("0003_c.sql"),
	}

	for limit := 0; limit <= 5; limit++ {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			result, err := Migrations(known, nil, migration.Up, limit)
			require.NoError(t, err)

			want := limit
			if want > len(known) {
				want = len(known)
			}
			assert.Len(t, result, want)
		})
	}

	t.Run("no limit yields the untruncated plan", func(t *testing.T) {
		result, err := Migrations(known, nil, migration.Up, migration.NoLimit)
		require.NoError(t, err)
		assert.Len(t, result, len(known))
	})
}

func Test_DownPlanReversesUpPlan(t *testing.T) {
	known := migration.Migrations{
		knownMigration("0002_b.sql"),
		knownMigration("0001_a.sql"),
		knownMigration("0003_c.sql"),
	}

	upPlan, err := Migrations(known, nil, migration.Up, migration.NoLimit)
	require.NoError(t, err)

	// pretend the whole up plan was applied, then plan the way back
	var applied migration.Migrations
	for _, m := range upPlan {
		applied = append(applied, appliedMigration(m.Name))
	}

	downPlan, err := Migrations(known, applied, migration.Down, migration.NoLimit)
	require.NoError(t, err)

	require.Len(t, downPlan, len(upPlan))
	for i := range upPlan {
		assert.Equal(t, upPlan[i].Name, downPlan[len(downPlan)-1-i].Name)
	}
}

func Test_ListShowsAppliedThenPending(t *testing.T) {
	known := migration.Migrations{
		knownMigration("0001_a.sql"),
		knownMigration("0002_b.sql"),
		knownMigration("0003_c.sql"),
	}
	applied := migration.Migrations{
		appliedMigration("0002_b.sql"),
		appliedMigration("0001_a.sql"),
	}

	result, err := List(known, applied)
	require.NoError(t, err)

	assert.Equal(t, []string{"0001_a.sql", "0002_b.sql", "0003_c.sql"}, result.Names())
	assert.True(t, result[0].Applied())
	assert.True(t, result[1].Applied())
	assert.False(t, result[2].Applied())
}

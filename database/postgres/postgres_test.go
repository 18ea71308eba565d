package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DialectQuotesIdentifiers(t *testing.T) {
	d := Dialect{}

	assert.Equal(
		t,
		`CREATE TABLE IF NOT EXISTS "migrations" (name text PRIMARY KEY, apply_time timestamp with time zone NOT NULL DEFAULT now())`,
		d.CreateMigrationTableSQL("migrations"),
	)
	assert.Equal(t, `SELECT name, apply_time FROM "migrations" ORDER BY name`, d.ListMigrationsSQL("migrations"))
	assert.Equal(t, `INSERT INTO "migrations" (name) VALUES ($1)`, d.InsertMigrationSQL("migrations"))
	assert.Equal(t, `DELETE FROM "migrations" WHERE name = $1`, d.DeleteMigrationSQL("migrations"))
}

func Test_DialectEscapesEmbeddedQuotes(t *testing.T) {
	d := Dialect{}

	assert.Contains(t, d.InsertMigrationSQL(`weird"name`), `"weird""name"`)
}

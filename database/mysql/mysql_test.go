package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DialectQuotesIdentifiers(t *testing.T) {
	d := Dialect{}

	assert.Equal(
		t,
		"CREATE TABLE IF NOT EXISTS `migrations` (name VARCHAR(255) PRIMARY KEY, apply_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP) ENGINE=InnoDB",
		d.CreateMigrationTableSQL("migrations"),
	)
	assert.Equal(t, "SELECT `name`, `apply_time` FROM `migrations` ORDER BY `name`", d.ListMigrationsSQL("migrations"))
	assert.Equal(t, "INSERT INTO `migrations` (`name`) VALUES (?)", d.InsertMigrationSQL("migrations"))
	assert.Equal(t, "DELETE FROM `migrations` WHERE `name` = ?", d.DeleteMigrationSQL("migrations"))
}

func Test_WithParseTime(t *testing.T) {
	tt := []struct {
		name string
		in   string
		out  string
	}{
		{name: "bare dsn", in: "user@tcp(localhost:3306)/app", out: "user@tcp(localhost:3306)/app?parseTime=true"},
		{name: "existing params", in: "user@tcp(localhost:3306)/app?loc=UTC", out: "user@tcp(localhost:3306)/app?loc=UTC&parseTime=true"},
		{name: "already set", in: "user@tcp(localhost:3306)/app?parseTime=false", out: "user@tcp(localhost:3306)/app?parseTime=false"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.out, withParseTime(tc.in))
		})
	}
}

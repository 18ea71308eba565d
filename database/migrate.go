package database

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/sqlshift/sqlshift/migration"
	"github.com/sqlshift/sqlshift/plan"
)

var ErrNoDirection = errors.New("migration direction not specified")

// EnsureMigrationTable creates the bookkeeping table when it does not
// exist yet. It is idempotent.
func EnsureMigrationTable(ctx context.Context, conn Connection, table string) error {
	if err := conn.Exec(ctx, conn.CreateMigrationTableSQL(table)); err != nil {
		return errors.Wrapf(err, "could not create migration table [%s]", table)
	}

	return nil
}

// MigrationRecords reads the bookkeeping table and re-materializes its
// rows as applied migrations, ordered by name, apply times in UTC.
func MigrationRecords(ctx context.Context, conn Connection, table string) (migration.Migrations, error) {
	rows, err := conn.Query(ctx, conn.ListMigrationsSQL(table))
	if err != nil {
		return nil, errors.Wrapf(err, "could not read migration records from [%s]", table)
	}

	result := make(migration.Migrations, 0, len(rows))
	for _, row := range rows {
		name, err := stringField(row, "name")
		if err != nil {
			return nil, errors.Wrapf(err, "invalid migration record in [%s]", table)
		}

		appliedAt, err := timeField(row, "apply_time")
		if err != nil {
			return nil, errors.Wrapf(err, "invalid migration record [%s] in [%s]", name, table)
		}

		result = append(result, migration.NewApplied(name, appliedAt))
	}

	return result, nil
}

// Apply plans against the bookkeeping table and executes the plan in
// order. Each migration's statement batch and its bookkeeping write
// form one transaction unless the migration opted out for that
// direction, in which case they run as independent steps.
//
// The engine performs no cross-process coordination: concurrent runs
// against the same database must be serialized by the caller, e.g.
// with an external advisory lock.
//
// On failure the count of migrations already fully processed is
// returned with the error; everything committed before the failing
// migration stays committed, so a later re-run resumes exactly where
// this one stopped.
func Apply(
	ctx context.Context,
	conn Connection,
	table string,
	options migration.Options,
	known migration.Migrations,
) (int, error) {
	if options.Direction != migration.Up && options.Direction != migration.Down {
		return 0, ErrNoDirection
	}

	if err := EnsureMigrationTable(ctx, conn, table); err != nil {
		return 0, err
	}

	applied, err := MigrationRecords(ctx, conn, table)
	if err != nil {
		return 0, err
	}

	toApply, err := plan.Migrations(known, applied, options.Direction, options.Limit)
	if err != nil {
		return 0, err
	}

	for i, m := range toApply {
		if err := applyOne(ctx, conn, table, options.Direction, m); err != nil {
			return i, errors.Wrapf(err, "migration [%s] %s failed", m.Name, options.Direction)
		}
	}

	return len(toApply), nil
}

// List returns the status view for the given source set: applied
// records first, pending migrations after, all in name order.
func List(ctx context.Context, conn Connection, table string, known migration.Migrations) (migration.Migrations, error) {
	if err := EnsureMigrationTable(ctx, conn, table); err != nil {
		return nil, err
	}

	applied, err := MigrationRecords(ctx, conn, table)
	if err != nil {
		return nil, err
	}

	return plan.List(known, applied)
}

func applyOne(ctx context.Context, conn Connection, table string, d migration.Direction, m *migration.Migration) error {
	statements := m.Statements(d)

	if m.TransactionsDisabled(d) {
		for _, statement := range statements {
			if err := conn.Exec(ctx, statement); err != nil {
				return err
			}
		}

		return markMigration(ctx, conn, table, d, m)
	}

	return conn.Transaction(ctx, func(tx Connection) error {
		for _, statement := range statements {
			if err := tx.Exec(ctx, statement); err != nil {
				return err
			}
		}

		return markMigration(ctx, tx, table, d, m)
	})
}

func markMigration(ctx context.Context, conn Connection, table string, d migration.Direction, m *migration.Migration) error {
	query := conn.InsertMigrationSQL(table)
	if d == migration.Down {
		query = conn.DeleteMigrationSQL(table)
	}

	if err := conn.Exec(ctx, query, m.Name); err != nil {
		return errors.Wrapf(err, "could not record migration [%s]", m.Name)
	}

	return nil
}

func stringField(row map[string]interface{}, key string) (string, error) {
	value, ok := row[key]
	if !ok {
		return "", errors.Errorf("column [%s] is missing", key)
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}

	return "", errors.Errorf("column [%s] holds %T, expected a string", key, value)
}

func timeField(row map[string]interface{}, key string) (time.Time, error) {
	value, ok := row[key]
	if !ok {
		return time.Time{}, errors.Errorf("column [%s] is missing", key)
	}

	switch v := value.(type) {
	case time.Time:
		return v, nil
	case []byte:
		return parseTimeValue(string(v), key)
	case string:
		return parseTimeValue(v, key)
	}

	return time.Time{}, errors.Errorf("column [%s] holds %T, expected a timestamp", key, value)
}

// parseTimeValue covers drivers that hand timestamps back as text,
// e.g. sqlite or mysql without parseTime.
func parseTimeValue(value, key string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Errorf("column [%s] holds unparseable timestamp [%s]", key, value)
}

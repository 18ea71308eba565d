// Package plan reconciles the migrations known from source with the
// records already applied in the database and produces the ordered
// execution plan. It is pure: no I/O, no mutation of its inputs.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sqlshift/sqlshift/migration"
)

// UnknownAppliedError means the database history references migrations
// that are no longer present in source. Proceeding would require
// destructive guessing, so planning always fails instead.
type UnknownAppliedError struct {
	Names []string
}

func (e *UnknownAppliedError) Error() string {
	return fmt.Sprintf("unknown applied migrations found: %s", strings.Join(e.Names, ", "))
}

// InvalidOrderError means a later-named migration was applied while an
// earlier-named one is still pending, which breaks the linear history
// the planner relies on.
type InvalidOrderError struct {
	LastApplied    string
	FirstUnapplied string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf(
		"found migrations applied at an invalid order: migration [%s] was applied before migration [%s]",
		e.LastApplied, e.FirstUnapplied,
	)
}

// Migrations computes the ordered list of migrations to apply or roll
// back. Names sort lexicographically and that order is the single
// chronological key. A negative limit (migration.NoLimit) leaves the
// plan untruncated, any non-negative limit caps it exactly.
func Migrations(
	known migration.Migrations,
	applied migration.Migrations,
	direction migration.Direction,
	limit int,
) (migration.Migrations, error) {
	if len(applied) == 0 {
		if direction == migration.Down {
			return nil, nil
		}

		result := make(migration.Migrations, len(known))
		copy(result, known)
		sort.Sort(result)

		return truncate(result, limit), nil
	}

	knownByName := make(map[string]*migration.Migration, len(known))
	for i := range known {
		knownByName[known[i].Name] = known[i]
	}

	appliedNames := make(map[string]struct{}, len(applied))
	var unknownApplied []string
	for i := range applied {
		appliedNames[applied[i].Name] = struct{}{}
		if _, ok := knownByName[applied[i].Name]; !ok {
			unknownApplied = append(unknownApplied, applied[i].Name)
		}
	}

	if len(unknownApplied) > 0 {
		sort.Strings(unknownApplied)
		return nil, &UnknownAppliedError{Names: unknownApplied}
	}

	var unappliedNames []string
	for name := range knownByName {
		if _, ok := appliedNames[name]; !ok {
			unappliedNames = append(unappliedNames, name)
		}
	}

	if len(unappliedNames) > 0 {
		lastApplied := maxName(appliedNames)
		firstUnapplied := minName(unappliedNames)
		if lastApplied > firstUnapplied {
			return nil, &InvalidOrderError{
				LastApplied:    lastApplied,
				FirstUnapplied: firstUnapplied,
			}
		}
	}

	var result migration.Migrations
	if direction == migration.Up {
		for _, name := range unappliedNames {
			result = append(result, knownByName[name])
		}
		sort.Sort(result)
	} else {
		// undo the most recent first
		for name := range appliedNames {
			result = append(result, knownByName[name])
		}
		sort.Sort(sort.Reverse(result))
	}

	return truncate(result, limit), nil
}

// List returns the full status view: applied migrations ascending by
// name, followed by the pending ones in apply order.
func List(known, applied migration.Migrations) (migration.Migrations, error) {
	pending, err := Migrations(known, applied, migration.Up, migration.NoLimit)
	if err != nil {
		return nil, err
	}

	result := make(migration.Migrations, len(applied))
	copy(result, applied)
	sort.Sort(result)

	return append(result, pending...), nil
}

func truncate(m migration.Migrations, limit int) migration.Migrations {
	if limit < 0 || limit >= len(m) {
		return m
	}

	return m[:limit]
}

func maxName(names map[string]struct{}) string {
	var result string
	for name := range names {
		if name > result {
			result = name
		}
	}

	return result
}

func minName(names []string) string {
	result := names[0]
	for _, name := range names[1:] {
		if name < result {
			result = name
		}
	}

	return result
}

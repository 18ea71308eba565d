package migration

import (
	"time"
)

// NoLimit tells the planner to return the untruncated plan.
// Any non-negative limit caps the plan size exactly, so a limit
// of zero produces an empty plan.
const NoLimit = -1

type (
	Status int

	Direction int

	// Options select the direction of a run and cap how many
	// migrations it may process.
	Options struct {
		Direction Direction
		Limit     int
	}

	// Migration is a single named unit of schema change. It is built
	// either by the parser from a migration file, in which case it
	// carries the Up and Down statement groups, or from a bookkeeping
	// table row, in which case it carries only the name and apply time.
	Migration struct {
		Name                    string
		Status                  Status
		AppliedAt               time.Time
		UpStatements            []string
		DownStatements          []string
		DisableTransactionsUp   bool
		DisableTransactionsDown bool
	}
)

const (
	StatusUnapplied Status = iota
	StatusApplied
)

const (
	Up Direction = iota + 1
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}

	return "unknown"
}

// New creates an unapplied migration, the state every parsed
// migration starts in.
func New(name string) *Migration {
	return &Migration{
		Name:   name,
		Status: StatusUnapplied,
	}
}

// NewApplied re-materializes a migration from a bookkeeping table row.
// The apply time is normalized to UTC immediately so that records read
// from differently configured servers always compare cleanly.
func NewApplied(name string, appliedAt time.Time) *Migration {
	return &Migration{
		Name:      name,
		Status:    StatusApplied,
		AppliedAt: appliedAt.UTC(),
	}
}

func (m *Migration) Applied() bool {
	return m.Status == StatusApplied
}

// Statements returns the statement group for the given direction.
func (m *Migration) Statements(d Direction) []string {
	if d == Down {
		return m.DownStatements
	}

	return m.UpStatements
}

// TransactionsDisabled reports whether the given direction opted out
// of the transaction wrapper via the notransaction option.
func (m *Migration) TransactionsDisabled(d Direction) bool {
	if d == Down {
		return m.DisableTransactionsDown
	}

	return m.DisableTransactionsUp
}

type Migrations []*Migration

func (m Migrations) Names() (result []string) {
	for i := range m {
		result = append(result, m[i].Name)
	}
	return result
}

func (m Migrations) Len() int {
	return len(m)
}

func (m Migrations) Less(i, j int) bool {
	return m[i].Name < m[j].Name
}

func (m Migrations) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}

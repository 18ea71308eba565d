// Package parser turns migration file text into directional SQL
// statement groups. The format follows the sql-migrate convention:
// lines starting with "-- +migrate " are directives, everything else
// under an active direction accumulates into the current statement.
package parser

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/sqlshift/sqlshift/migration"
)

const (
	// CommandPrefix marks a directive line inside a migration file.
	CommandPrefix = "-- +migrate "

	// OptionNoTransaction disables the transaction wrapper for the
	// direction it is attached to.
	OptionNoTransaction = "notransaction"

	commentPrefix   = "-- "
	directivePrefix = "-- +"

	commandUp             = "Up"
	commandDown           = "Down"
	commandStatementBegin = "StatementBegin"
	commandStatementEnd   = "StatementEnd"
)

var (
	ErrEmptyCommand   = errors.New("incomplete migration command")
	ErrInvalidCommand = errors.New("invalid migration command")
	ErrNoAnnotations  = errors.New("no Up/Down annotations found, so no statements were executed")

	ErrNoTerminator = errors.New(
		"the last statement must be ended by a semicolon or '-- +migrate StatementEnd' marker",
	)

	ErrUnfinishedStatementBlock = errors.New(
		"saw '-- +migrate StatementBegin' with no matching '-- +migrate StatementEnd'",
	)
)

type command struct {
	name    string
	options []string
}

func (c command) hasOption(option string) bool {
	for i := range c.options {
		if c.options[i] == option {
			return true
		}
	}

	return false
}

func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.TrimPrefix(line, CommandPrefix))
	if len(fields) == 0 {
		return command{}, ErrEmptyCommand
	}

	return command{name: fields[0], options: fields[1:]}, nil
}

// endsWithSemicolon reports whether the line, with any trailing line
// comment stripped, terminates a statement.
func endsWithSemicolon(line string) bool {
	beforeComment := line
	if idx := strings.Index(line, "--"); idx >= 0 {
		beforeComment = line[:idx]
	}

	return strings.HasSuffix(strings.TrimRight(beforeComment, " \t"), ";")
}

// parseState holds the mutable parse position so that every line
// transition is explicit and testable.
type parseState struct {
	buf              bytes.Buffer
	statementEnded   bool
	ignoreSemicolons bool
	direction        migration.Direction
	result           *migration.Migration
}

func (s *parseState) applyCommand(cmd command) error {
	switch cmd.name {
	case commandUp, commandDown:
		// a direction switch with a half-written statement left in
		// the buffer means the previous statement was never terminated
		if strings.TrimSpace(s.buf.String()) != "" {
			return ErrNoTerminator
		}

		s.buf.Reset()

		if cmd.name == commandUp {
			s.direction = migration.Up
			if cmd.hasOption(OptionNoTransaction) {
				s.result.DisableTransactionsUp = true
			}
		} else {
			s.direction = migration.Down
			if cmd.hasOption(OptionNoTransaction) {
				s.result.DisableTransactionsDown = true
			}
		}
	case commandStatementBegin:
		if s.direction != 0 {
			s.ignoreSemicolons = true
		}
	case commandStatementEnd:
		if s.direction != 0 {
			s.statementEnded = s.ignoreSemicolons
			s.ignoreSemicolons = false
		}
	default:
		return errors.Wrapf(ErrInvalidCommand, "[%s]", cmd.name)
	}

	return nil
}

func (s *parseState) completeStatement() {
	if s.direction == migration.Up {
		s.result.UpStatements = append(s.result.UpStatements, s.buf.String())
	} else {
		s.result.DownStatements = append(s.result.DownStatements, s.buf.String())
	}

	s.buf.Reset()
}

// Parse reads one migration file and produces an unapplied migration
// carrying its Up and Down statement groups. Parsing is deterministic
// and performs no I/O beyond reading r.
func Parse(name string, r io.Reader) (*migration.Migration, error) {
	s := &parseState{result: migration.New(name)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		// plain comments are stripped, directives are not
		if strings.HasPrefix(line, commentPrefix) && !strings.HasPrefix(line, directivePrefix) {
			continue
		}

		if strings.HasPrefix(line, CommandPrefix) {
			cmd, err := parseCommand(line)
			if err != nil {
				return nil, errors.Wrapf(err, "migration [%s]", name)
			}

			if err := s.applyCommand(cmd); err != nil {
				return nil, errors.Wrapf(err, "migration [%s]", name)
			}
		}

		// everything before the first Up/Down annotation is preamble
		if s.direction == 0 {
			continue
		}

		if !strings.HasPrefix(line, directivePrefix) {
			s.buf.WriteString(line)
			s.buf.WriteString("\n")
		}

		// a statement completes on a terminating semicolon, unless a
		// StatementBegin block suppresses them, or right after a
		// StatementEnd marker
		if (!s.ignoreSemicolons && endsWithSemicolon(line)) || s.statementEnded {
			s.statementEnded = false
			s.completeStatement()
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "could not read migration [%s]", name)
	}

	if s.ignoreSemicolons {
		return nil, errors.Wrapf(ErrUnfinishedStatementBlock, "migration [%s]", name)
	}

	if s.direction == 0 {
		return nil, errors.Wrapf(ErrNoAnnotations, "migration [%s]", name)
	}

	// a trailing directive-prefixed comment is fine, it supports
	// "nothing to do" notes after a direction marker
	rest := s.buf.String()
	if strings.TrimSpace(rest) != "" && !strings.HasPrefix(rest, directivePrefix) {
		return nil, errors.Wrapf(ErrNoTerminator, "migration [%s]", name)
	}

	return s.result, nil
}

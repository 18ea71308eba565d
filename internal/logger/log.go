package logger

import (
	"bytes"
	"fmt"

	"github.com/logrusorgru/aurora/v3"
)

// Printer is satisfied by *log.Logger.
type Printer interface {
	Output(calldepth int, s string) error
}

type Logger interface {
	Successf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Error(err error)
	SQL(query string, args ...interface{})
}

type ColorLogger struct {
	printer Printer
	debug   bool
	sql     bool
}

type BWLogger struct {
	printer Printer
	debug   bool
	sql     bool
}

var _ Logger = (*ColorLogger)(nil)
var _ Logger = (*BWLogger)(nil)

func NewColorLogger(p Printer, sql, debug bool) *ColorLogger {
	return &ColorLogger{printer: p, sql: sql, debug: debug}
}

func NewBWLogger(p Printer, sql, debug bool) *BWLogger {
	return &BWLogger{printer: p, sql: sql, debug: debug}
}

func (cl *ColorLogger) Debugf(format string, args ...interface{}) {
	if cl.debug {
		msg := fmt.Sprintf("\nsqlshift debug: "+format, args...)
		_ = cl.printer.Output(2, aurora.Yellow(msg).String())
	}
}

func (cl *ColorLogger) Successf(format string, args ...interface{}) {
	msg := fmt.Sprintf("\nsqlshift: "+format, args...)
	_ = cl.printer.Output(2, aurora.Green(msg).String())
}

func (cl *ColorLogger) Error(err error) {
	msg := fmt.Sprintf("\nsqlshift error: %s", err.Error())
	_ = cl.printer.Output(2, aurora.Red(msg).String())
}

func (cl *ColorLogger) SQL(query string, args ...interface{}) {
	if cl.sql {
		_ = cl.printer.Output(2, aurora.Gray(15, formatSQL(query, args...)).String())
	}
}

func (bwl *BWLogger) Debugf(format string, args ...interface{}) {
	if bwl.debug {
		_ = bwl.printer.Output(2, fmt.Sprintf("\nsqlshift debug: "+format, args...))
	}
}

func (bwl *BWLogger) Successf(format string, args ...interface{}) {
	_ = bwl.printer.Output(2, fmt.Sprintf("\nsqlshift: "+format, args...))
}

func (bwl *BWLogger) Error(err error) {
	_ = bwl.printer.Output(2, fmt.Sprintf("\nsqlshift error: %s", err.Error()))
}

func (bwl *BWLogger) SQL(query string, args ...interface{}) {
	if bwl.sql {
		_ = bwl.printer.Output(2, formatSQL(query, args...))
	}
}

func formatSQL(query string, args ...interface{}) string {
	var buf bytes.Buffer
	buf.WriteString("\nsqlshift running sql: ")
	buf.WriteString(query)

	if len(args) > 0 {
		buf.WriteString("\nquery parameters: ")
		for i := range args {
			if i+1 < len(args) {
				buf.WriteString(fmt.Sprintf("{%#v}, ", args[i]))
			} else {
				buf.WriteString(fmt.Sprintf("{%#v}", args[i]))
			}
		}
	}

	return buf.String()
}

package cli

import (
	"fmt"
	"io"
	"strings"
)

// renderTwoColTable draws a bordered two column table with a centered
// header row and left aligned cells.
func renderTwoColTable(w io.Writer, header [2]string, rows [][2]string) {
	col0 := len(header[0]) + 2
	col1 := len(header[1]) + 2
	for _, row := range rows {
		if n := len(row[0]) + 2; n > col0 {
			col0 = n
		}
		if n := len(row[1]) + 2; n > col1 {
			col1 = n
		}
	}

	border := fmt.Sprintf("+%s+%s+\n", strings.Repeat("-", col0), strings.Repeat("-", col1))

	fmt.Fprint(w, border)
	fmt.Fprintf(w, "|%s|%s|\n", center(header[0], col0), center(header[1], col1))
	fmt.Fprint(w, border)
	for _, row := range rows {
		fmt.Fprintf(
			w, "| %s| %s|\n",
			row[0]+strings.Repeat(" ", col0-len(row[0])-1),
			row[1]+strings.Repeat(" ", col1-len(row[1])-1),
		)
	}
	fmt.Fprint(w, border)
}

func center(s string, width int) string {
	after := (width - len(s)) / 2
	before := width - len(s) - after

	return strings.Repeat(" ", before) + s + strings.Repeat(" ", after)
}

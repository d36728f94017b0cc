package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

// DefaultMaxCellWidth bounds preview cells so wide values do not break the layout
const DefaultMaxCellWidth = 40

// TablePrinter handles tabular output for list commands
type TablePrinter struct {
	w        *tabwriter.Writer
	maxWidth int
}

// NewTablePrinter creates a TablePrinter writing to stdout
func NewTablePrinter() *TablePrinter {
	return NewTablePrinterTo(os.Stdout)
}

// NewTablePrinterTo creates a TablePrinter writing to the given writer
func NewTablePrinterTo(out io.Writer) *TablePrinter {
	return &TablePrinter{
		w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
	}
}

// WithMaxCellWidth truncates every cell longer than n runes. Zero disables truncation.
func (t *TablePrinter) WithMaxCellWidth(n int) *TablePrinter {
	t.maxWidth = n
	return t
}

// Header prints the header row
func (t *TablePrinter) Header(columns ...string) {
	t.line(columns)
}

// Row prints a data row
func (t *TablePrinter) Row(values ...string) {
	t.line(values)
}

func (t *TablePrinter) line(cells []string) {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = Truncate(sanitizeCell(c), t.maxWidth)
	}
	fmt.Fprintln(t.w, strings.Join(out, "\t"))
}

// Flush writes the buffered table
func (t *TablePrinter) Flush() {
	t.w.Flush()
}

// Truncate shortens s to at most n runes, marking the cut with "..."
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

// tabs and newlines inside a cell would split it across columns or rows
func sanitizeCell(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, s)
}

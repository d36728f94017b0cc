package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestTablePrinter(t *testing.T) {
	var buf bytes.Buffer
	tp := NewTablePrinterTo(&buf)

	tp.Header("FILE", "ROWS", "STATUS")
	tp.Row("a.csv", "10", "pass")
	tp.Row("b.csv", "0", "fail")
	tp.Flush()

	output := buf.String()

	if !strings.Contains(output, "FILE") {
		t.Error("output missing FILE header")
	}
	if !strings.Contains(output, "a.csv") {
		t.Error("output missing a.csv row")
	}
	if !strings.Contains(output, "b.csv") {
		t.Error("output missing b.csv row")
	}
	if lines := strings.Count(output, "\n"); lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
}

func TestTablePrinterSanitizesCells(t *testing.T) {
	var buf bytes.Buffer
	tp := NewTablePrinterTo(&buf)

	tp.Row("multi\nline", "tab\tbed")
	tp.Flush()

	if lines := strings.Count(buf.String(), "\n"); lines != 1 {
		t.Errorf("expected a single line, got %d: %q", lines, buf.String())
	}
}

func TestTablePrinterMaxCellWidth(t *testing.T) {
	var buf bytes.Buffer
	tp := NewTablePrinterTo(&buf).WithMaxCellWidth(8)

	tp.Row("abcdefghijklmnop")
	tp.Flush()

	if got := strings.TrimSpace(buf.String()); got != "abcde..." {
		t.Errorf("expected truncated cell, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"longer value", 8, "longe..."},
		{"abcdef", 2, "ab"},
		{"héllo wörld", 6, "hél..."},
		{"anything", 0, "anything"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

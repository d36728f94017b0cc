// Package render writes dashboard data as terminal tables
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aaronwald/rawdash/internal/dashboard"
	"github.com/aaronwald/rawdash/internal/types"
	"github.com/aaronwald/rawdash/internal/utils"
)

// Stats prints the summary block: totals, scan time and check aggregates
func Stats(w io.Writer, p *types.SummaryPayload, now time.Time) {
	if p == nil {
		fmt.Fprintln(w, "No summary loaded.")
		return
	}
	s := p.Summary
	tp := utils.NewTablePrinterTo(w)
	tp.Row("Files:", utils.FormatCount(s.TotalFiles))
	tp.Row("CSV files:", utils.FormatCount(s.CSVFiles))
	tp.Row("Rows:", utils.FormatCount(s.TotalRows))
	tp.Row("Size:", utils.FormatBytes(s.TotalSizeBytes))
	tp.Row("Scanned:", utils.FormatTimestamp(s.ScannedAt, now))
	tp.Flush()
	Counts(w, p.CheckCounts())
}

// Counts prints the check aggregates on one line
func Counts(w io.Writer, c types.CheckCounts) {
	line := fmt.Sprintf("Checks: %d total, %d pass, %d warn, %d fail (pass rate %s)",
		c.Total, c.Passing, c.Warn, c.Fail, utils.FormatPercent(c.Rate))
	if c.Unknown > 0 {
		line += fmt.Sprintf(", %d unknown", c.Unknown)
	}
	fmt.Fprintln(w, line)
}

// Files prints the file inventory. The selected file is marked with '*'.
func Files(w io.Writer, files []types.FileRecord, selected string) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files found.")
		return
	}

	tp := utils.NewTablePrinterTo(w)
	tp.Header("", "#", "FILE", "ROWS", "COLS", "SIZE", "MISSING", "MODIFIED", "CSV")
	for i, f := range files {
		marker := ""
		if f.FileName == selected && selected != "" {
			marker = "*"
		}
		modified := f.LastModified
		if t, ok := utils.ParseTimestamp(modified); ok {
			modified = t.UTC().Format("2006-01-02 15:04")
		} else if modified == "" {
			modified = utils.Placeholder
		}
		tp.Row(
			marker,
			strconv.Itoa(i+1),
			f.FileName,
			utils.FormatCount(f.Rows),
			utils.FormatInt(f.Columns),
			utils.FormatBytes(f.FileSizeBytes),
			utils.FormatRatio(f.OverallMissingRatio),
			modified,
			yesNo(f.IsCSV),
		)
	}
	tp.Flush()
}

// Checks prints the validation check table
func Checks(w io.Writer, checks []types.CheckRecord) {
	if len(checks) == 0 {
		fmt.Fprintln(w, "No checks found.")
		return
	}

	tp := utils.NewTablePrinterTo(w).WithMaxCellWidth(utils.DefaultMaxCellWidth)
	tp.Header("STATUS", "FILE", "CHECK", "OBSERVED", "EXPECTED", "DETAILS")
	for _, c := range checks {
		tp.Row(
			strings.ToUpper(string(c.Status)),
			c.File,
			c.Title,
			FormatValue(c.Observed),
			FormatValue(c.Expected),
			FormatValue(c.Details),
		)
	}
	tp.Flush()
}

// Preview prints a preview table, its error, or a loading marker
func Preview(w io.Writer, fileName string, p *types.PreviewPayload, loading bool) {
	switch {
	case fileName == "":
		fmt.Fprintln(w, "No file selected.")
		return
	case loading:
		fmt.Fprintf(w, "Loading preview of %s...\n", fileName)
		return
	case p == nil:
		fmt.Fprintf(w, "No preview for %s.\n", fileName)
		return
	case p.IsError():
		fmt.Fprintf(w, "Preview of %s failed: %s\n", fileName, p.Error)
		return
	}

	fmt.Fprintf(w, "Preview of %s (%d rows)\n", fileName, len(p.PreviewRows))
	if len(p.PreviewRows) == 0 {
		return
	}

	cols := p.Columns()
	tp := utils.NewTablePrinterTo(w).WithMaxCellWidth(utils.DefaultMaxCellWidth)
	tp.Header(cols...)
	for _, r := range p.PreviewRows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := r.Get(c); ok {
				cells[i] = FormatValue(v)
			}
		}
		tp.Row(cells...)
	}
	tp.Flush()
}

// Dashboard prints the whole state as one screen
func Dashboard(w io.Writer, s dashboard.State, now time.Time) {
	switch {
	case s.Loading && s.Summary == nil:
		fmt.Fprintln(w, "Loading dashboard summary...")
	case s.Loading:
		fmt.Fprintln(w, "Refreshing...")
	}
	if s.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", s.Error)
	}
	if s.Summary == nil {
		return
	}

	Stats(w, s.Summary, now)
	fmt.Fprintln(w)
	Files(w, s.Files(), s.Selected)
	fmt.Fprintln(w)
	Checks(w, s.Checks())
	fmt.Fprintln(w)

	// the preview pane only shows a payload that belongs to the current selection
	preview := s.Preview
	if s.PreviewFile != s.Selected {
		preview = nil
	}
	Preview(w, s.Selected, preview, s.PreviewLoading)
}

// FormatValue renders an arbitrary JSON scalar or structure for a table cell
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

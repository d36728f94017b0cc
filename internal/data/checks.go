package data

import (
	"github.com/aaronwald/rawdash/internal/types"
)

// Missing-value thresholds for the missing check
const (
	MissingPassThreshold = 0.05
	MissingWarnThreshold = 0.20
)

// FileScan is the outcome of scanning one file
type FileScan struct {
	Record  types.FileRecord
	Profile *Profile
	Err     error
}

func check(file, name string, status types.CheckStatus, observed, expected, details any) types.CheckRecord {
	return types.CheckRecord{
		ID:       file + ":" + name,
		File:     file,
		Title:    name,
		Status:   status,
		Observed: observed,
		Expected: expected,
		Details:  details,
	}
}

// RunChecks derives validation checks for each scanned file, in file order
func RunChecks(scans []FileScan) []types.CheckRecord {
	checks := []types.CheckRecord{}
	for _, s := range scans {
		name := s.Record.FileName

		if !s.Record.IsCSV {
			checks = append(checks, check(name, "format", types.CheckStatusWarn, "not csv", "csv", "file is not a CSV and cannot be previewed"))
			continue
		}
		checks = append(checks, check(name, "format", types.CheckStatusPass, "csv", "csv", nil))

		if s.Err != nil || s.Profile == nil {
			msg := "file could not be read"
			if s.Err != nil {
				msg = s.Err.Error()
			}
			checks = append(checks, check(name, "parse", types.CheckStatusFail, "unreadable", "readable", msg))
			continue
		}
		p := s.Profile

		rowStatus := types.CheckStatusPass
		if p.Rows == 0 {
			rowStatus = types.CheckStatusFail
		}
		checks = append(checks, check(name, "rows", rowStatus, p.Rows, "> 0", nil))

		ratio := p.MissingRatio()
		missingStatus := types.CheckStatusFail
		switch {
		case ratio <= MissingPassThreshold:
			missingStatus = types.CheckStatusPass
		case ratio <= MissingWarnThreshold:
			missingStatus = types.CheckStatusWarn
		}
		checks = append(checks, check(name, "missing", missingStatus, ratio, "<= 0.05", map[string]int64{
			"empty_cells": p.EmptyCells,
			"total_cells": p.TotalCells,
		}))

		shapeStatus := types.CheckStatusPass
		if p.RaggedRows > 0 {
			shapeStatus = types.CheckStatusFail
		}
		checks = append(checks, check(name, "shape", shapeStatus, p.RaggedRows, 0, map[string]int{
			"columns": p.Columns,
		}))
	}
	return checks
}

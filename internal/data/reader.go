package data

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aaronwald/rawdash/internal/types"
)

// Profile holds the statistics gathered by reading a whole CSV file
type Profile struct {
	Rows       int64
	Columns    int
	EmptyCells int64
	TotalCells int64
	RaggedRows int64
}

// MissingRatio is the share of empty cells over Rows*Columns. Short rows count
// their absent cells as empty.
func (p *Profile) MissingRatio() float64 {
	if p.TotalCells == 0 {
		return 0
	}
	return float64(p.EmptyCells) / float64(p.TotalCells)
}

// IsCSVName reports whether name has a .csv or .csv.gz extension
func IsCSVName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".csv.gz")
}

// openCSV opens name from storage, decompressing .gz files
func openCSV(s Storage, name string) (io.Reader, io.Closer, error) {
	rc, err := s.Open(name)
	if err != nil {
		return nil, nil, err
	}

	var r io.Reader = bufio.NewReader(rc)
	closer := io.Closer(rc)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		gr, err := gzip.NewReader(r)
		if err != nil {
			rc.Close()
			return nil, nil, fmt.Errorf("opening gzip: %w", err)
		}
		r = gr
		closer = multiCloser{gr, rc}
	}
	return r, closer, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

// ProfileCSV reads every record of a CSV stream. The first record is the header.
func ProfileCSV(r io.Reader) (*Profile, error) {
	return profileRecords(newCSVReader(r))
}

// ProfileFile profiles a CSV file from storage
func ProfileFile(s Storage, name string) (*Profile, error) {
	r, closer, err := openCSV(s, name)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return ProfileCSV(r)
}

func profileRecords(cr *csv.Reader) (*Profile, error) {
	p := &Profile{}

	header, err := cr.Read()
	if err == io.EOF {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	p.Columns = len(header)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", p.Rows+1, err)
		}
		p.Rows++
		if len(record) != p.Columns {
			p.RaggedRows++
		}
		for i := 0; i < p.Columns; i++ {
			if i >= len(record) || strings.TrimSpace(record[i]) == "" {
				p.EmptyCells++
			}
		}
	}
	p.TotalCells = p.Rows * int64(p.Columns)
	return p, nil
}

// ReadCSVRows returns up to limit data rows keyed by header column, in header order.
// Absent trailing cells are null; cells beyond the header are dropped.
func ReadCSVRows(r io.Reader, limit int) ([]types.Row, error) {
	return readRows(newCSVReader(r), limit)
}

// ReadFileRows reads preview rows of a CSV file from storage
func ReadFileRows(s Storage, name string, limit int) ([]types.Row, error) {
	r, closer, err := openCSV(s, name)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return ReadCSVRows(r, limit)
}

func readRows(cr *csv.Reader, limit int) ([]types.Row, error) {
	rows := []types.Row{}

	header, err := cr.Read()
	if err == io.EOF {
		return rows, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	columns := columnNames(header)

	for limit <= 0 || len(rows) < limit {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+1, err)
		}
		values := make([]any, len(columns))
		for i := range columns {
			if i < len(record) {
				values[i] = record[i]
			}
		}
		rows = append(rows, types.NewRow(columns, values))
	}
	return rows, nil
}

// columnNames fills blank header cells and de-duplicates repeated names.
// Generated names never collide with a name used elsewhere in the header.
func columnNames(header []string) []string {
	cleaned := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		cleaned[i] = name
		taken[name] = true
	}

	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, name := range cleaned {
		if used[name] {
			base := name
			for n := 2; ; n++ {
				name = base + "_" + strconv.Itoa(n)
				if !used[name] && !taken[name] {
					break
				}
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

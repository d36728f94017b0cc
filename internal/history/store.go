// internal/history/store.go
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aaronwald/rawdash/internal/types"
	"github.com/lib/pq"
)

// CheckBatchSize is the number of check rows to insert per bulk query
const CheckBatchSize = 500

// DefaultListLimit caps ListScans when no limit is given
const DefaultListLimit = 20

const schema = `
CREATE TABLE IF NOT EXISTS dashboard_scans (
	id               BIGSERIAL PRIMARY KEY,
	scanned_at       TIMESTAMPTZ NOT NULL,
	total_files      BIGINT,
	csv_files        BIGINT,
	total_rows       BIGINT,
	total_size_bytes BIGINT,
	passing          INTEGER NOT NULL,
	warn             INTEGER NOT NULL,
	fail             INTEGER NOT NULL,
	check_rate       INTEGER NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS dashboard_check_results (
	scan_id  BIGINT NOT NULL REFERENCES dashboard_scans(id) ON DELETE CASCADE,
	check_id TEXT NOT NULL,
	file     TEXT NOT NULL,
	title    TEXT NOT NULL,
	status   TEXT NOT NULL,
	observed JSONB,
	expected JSONB,
	details  JSONB,
	PRIMARY KEY (scan_id, check_id)
);

CREATE INDEX IF NOT EXISTS idx_dashboard_check_results_status
	ON dashboard_check_results (scan_id, status);
`

// Scan is one recorded summary
type Scan struct {
	ID             int64             `json:"id"`
	ScannedAt      time.Time         `json:"scanned_at"`
	TotalFiles     *int64            `json:"total_files,omitempty"`
	CSVFiles       *int64            `json:"csv_files,omitempty"`
	TotalRows      *int64            `json:"total_rows,omitempty"`
	TotalSizeBytes *int64            `json:"total_size_bytes,omitempty"`
	Counts         types.CheckCounts `json:"counts"`
}

// Store handles scan history database operations
type Store struct {
	db *sql.DB
}

// NewStore creates a new history store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the history tables if they do not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// RecordScan stores a summary and all of its checks in one transaction
func (s *Store) RecordScan(ctx context.Context, p *types.SummaryPayload) (int64, error) {
	scannedAt := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339, p.Summary.ScannedAt); err == nil {
		scannedAt = t
	}
	counts := p.CheckCounts()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var scanID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO dashboard_scans (scanned_at, total_files, csv_files, total_rows, total_size_bytes,
			passing, warn, fail, check_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, scannedAt, p.Summary.TotalFiles, p.Summary.CSVFiles, p.Summary.TotalRows, p.Summary.TotalSizeBytes,
		counts.Passing, counts.Warn, counts.Fail, counts.Rate).Scan(&scanID)
	if err != nil {
		return 0, fmt.Errorf("insert scan: %w", err)
	}

	for i := 0; i < len(p.Checks); i += CheckBatchSize {
		end := i + CheckBatchSize
		if end > len(p.Checks) {
			end = len(p.Checks)
		}
		query, args, err := buildCheckInsert(scanID, p.Checks[i:end])
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert checks: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return scanID, nil
}

// buildCheckInsert builds a multi-row VALUES insert for one batch of checks
func buildCheckInsert(scanID int64, checks []types.CheckRecord) (string, []interface{}, error) {
	const cols = 8
	valueStrings := make([]string, 0, len(checks))
	valueArgs := make([]interface{}, 0, len(checks)*cols)

	for i, c := range checks {
		observed, err := jsonValue(c.Observed)
		if err != nil {
			return "", nil, fmt.Errorf("encoding observed for %s: %w", c.ID, err)
		}
		expected, err := jsonValue(c.Expected)
		if err != nil {
			return "", nil, fmt.Errorf("encoding expected for %s: %w", c.ID, err)
		}
		details, err := jsonValue(c.Details)
		if err != nil {
			return "", nil, fmt.Errorf("encoding details for %s: %w", c.ID, err)
		}

		base := i * cols
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		valueArgs = append(valueArgs,
			scanID, c.ID, c.File, c.Title, string(c.Status),
			observed, expected, details,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO dashboard_check_results (scan_id, check_id, file, title, status, observed, expected, details)
		VALUES %s
		ON CONFLICT (scan_id, check_id) DO NOTHING
	`, strings.Join(valueStrings, ", "))
	return query, valueArgs, nil
}

// jsonValue encodes v for a JSONB column; nil stays NULL
func jsonValue(v any) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// ListScans returns the most recent scans, newest first
func (s *Store) ListScans(ctx context.Context, limit int) ([]Scan, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.scanned_at, s.total_files, s.csv_files, s.total_rows, s.total_size_bytes,
			s.passing, s.warn, s.fail, s.check_rate,
			(SELECT COUNT(*) FROM dashboard_check_results r WHERE r.scan_id = s.id)
		FROM dashboard_scans s
		ORDER BY s.scanned_at DESC, s.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		var sc Scan
		var files, csvFiles, totalRows, size sql.NullInt64
		err := rows.Scan(
			&sc.ID, &sc.ScannedAt, &files, &csvFiles, &totalRows, &size,
			&sc.Counts.Passing, &sc.Counts.Warn, &sc.Counts.Fail, &sc.Counts.Rate,
			&sc.Counts.Total,
		)
		if err != nil {
			return nil, err
		}
		sc.TotalFiles = nullInt(files)
		sc.CSVFiles = nullInt(csvFiles)
		sc.TotalRows = nullInt(totalRows)
		sc.TotalSizeBytes = nullInt(size)
		sc.Counts.Unknown = sc.Counts.Total - sc.Counts.Passing - sc.Counts.Warn - sc.Counts.Fail
		scans = append(scans, sc)
	}
	return scans, rows.Err()
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}

// CheckResults returns the checks recorded for a scan, optionally limited to statuses
func (s *Store) CheckResults(ctx context.Context, scanID int64, statuses []types.CheckStatus) ([]types.CheckRecord, error) {
	query := `
		SELECT check_id, file, title, status, observed, expected, details
		FROM dashboard_check_results
		WHERE scan_id = $1
	`
	args := []interface{}{scanID}
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		query += " AND status = ANY($2)"
		args = append(args, pq.Array(names))
	}
	query += " ORDER BY file, check_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query check results: %w", err)
	}
	defer rows.Close()

	checks := []types.CheckRecord{}
	for rows.Next() {
		var c types.CheckRecord
		var status string
		var observed, expected, details []byte
		if err := rows.Scan(&c.ID, &c.File, &c.Title, &status, &observed, &expected, &details); err != nil {
			return nil, err
		}
		c.Status = types.ParseCheckStatus(status)
		if c.Observed, err = decodeJSON(observed); err != nil {
			return nil, err
		}
		if c.Expected, err = decodeJSON(expected); err != nil {
			return nil, err
		}
		if c.Details, err = decodeJSON(details); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

func decodeJSON(data []byte) (any, error) {
	if data == nil {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding stored value: %w", err)
	}
	return v, nil
}

// ScanExists reports whether a scan id is known
func (s *Store) ScanExists(ctx context.Context, scanID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM dashboard_scans WHERE id = $1)`, scanID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query scan: %w", err)
	}
	return exists, nil
}

// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aaronwald/rawdash/internal/data"
	"github.com/aaronwald/rawdash/internal/history"
	"github.com/aaronwald/rawdash/internal/types"
)

type mockStorage struct {
	files map[string]string
}

func (m *mockStorage) ListFiles() ([]data.FileInfo, error) {
	var out []data.FileInfo
	for name, content := range m.files {
		out = append(out, data.FileInfo{Name: name, Size: int64(len(content)), ModTime: time.Unix(0, 0)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockStorage) Stat(name string) (data.FileInfo, error) {
	content, ok := m.files[name]
	if !ok {
		return data.FileInfo{}, fmt.Errorf("%w: %s", data.ErrNotFound, name)
	}
	return data.FileInfo{Name: name, Size: int64(len(content)), ModTime: time.Unix(0, 0)}, nil
}

func (m *mockStorage) Open(name string) (io.ReadCloser, error) {
	content, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", data.ErrNotFound, name)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

type mockHistory struct {
	scans    []history.Scan
	checks   map[int64][]types.CheckRecord
	statuses []types.CheckStatus
	limit    int
	err      error
}

func (m *mockHistory) ListScans(ctx context.Context, limit int) ([]history.Scan, error) {
	m.limit = limit
	return m.scans, m.err
}

func (m *mockHistory) ScanExists(ctx context.Context, scanID int64) (bool, error) {
	_, ok := m.checks[scanID]
	return ok, m.err
}

func (m *mockHistory) CheckResults(ctx context.Context, scanID int64, statuses []types.CheckStatus) ([]types.CheckRecord, error) {
	m.statuses = statuses
	return types.FilterChecks(m.checks[scanID], statuses...), m.err
}

func newTestServer(apiKey string) *Server {
	storage := &mockStorage{files: map[string]string{
		"a.csv":     "id,name\n1,alpha\n2,beta\n3,gamma\n",
		"b.csv":     "id,name\n1,\n",
		"notes.txt": "hello",
	}}
	return NewServer(storage, data.NewCatalog(storage), apiKey)
}

func do(t *testing.T, server http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer("test-key")

	rec := do(t, server, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var result map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status ok, got %s", result["status"])
	}
}

func TestSummaryEndpoint(t *testing.T) {
	server := newTestServer("")

	rec := do(t, server, "/api/raw/dashboard/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload types.SummaryPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if got := payload.FileNames(); strings.Join(got, ",") != "a.csv,b.csv,notes.txt" {
		t.Errorf("unexpected files %v", got)
	}
	if payload.Summary.TotalFiles == nil || *payload.Summary.TotalFiles != 3 {
		t.Errorf("expected total_files 3, got %v", payload.Summary.TotalFiles)
	}
	a := payload.FindFile("a.csv")
	if a == nil || a.Rows == nil || *a.Rows != 3 {
		t.Errorf("expected a.csv with 3 rows, got %+v", a)
	}
	if len(payload.Checks) == 0 {
		t.Error("expected checks")
	}
}

func TestFilePreviewEndpoint(t *testing.T) {
	server := newTestServer("")

	rec := do(t, server, "/api/raw/dashboard/file/a.csv?rows=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload types.PreviewPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.IsError() {
		t.Fatalf("unexpected error payload: %s", payload.Error)
	}
	if len(payload.PreviewRows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(payload.PreviewRows))
	}
	if v, _ := payload.PreviewRows[1].Get("name"); v != "beta" {
		t.Errorf("expected beta, got %v", v)
	}
}

func TestFilePreviewDefaultAndMaxRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("n\n")
	for i := 0; i < MaxPreviewRows+10; i++ {
		fmt.Fprintf(&sb, "%d\n", i)
	}
	storage := &mockStorage{files: map[string]string{"big.csv": sb.String()}}
	server := NewServer(storage, data.NewCatalog(storage), "")

	tests := []struct {
		query string
		want  int
	}{
		{"", DefaultPreviewRows},
		{"?rows=5", 5},
		{"?rows=100000", MaxPreviewRows},
	}
	for _, tt := range tests {
		rec := do(t, server, "/api/raw/dashboard/file/big.csv"+tt.query, nil)
		var payload types.PreviewPayload
		if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
			t.Fatalf("%q: decoding response: %v", tt.query, err)
		}
		if len(payload.PreviewRows) != tt.want {
			t.Errorf("%q: expected %d rows, got %d", tt.query, tt.want, len(payload.PreviewRows))
		}
	}
}

func TestFilePreviewErrors(t *testing.T) {
	server := newTestServer("")

	tests := []struct {
		name   string
		target string
		code   int
		body   string
	}{
		{"missing file", "/api/raw/dashboard/file/missing.csv", http.StatusNotFound, "file not found: missing.csv"},
		{"not csv", "/api/raw/dashboard/file/notes.txt", http.StatusUnprocessableEntity, "only available for CSV"},
		{"bad rows", "/api/raw/dashboard/file/a.csv?rows=abc", http.StatusBadRequest, "invalid rows"},
		{"negative rows", "/api/raw/dashboard/file/a.csv?rows=-1", http.StatusBadRequest, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, server, tt.target, nil)
			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, rec.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if !strings.Contains(body["error"], tt.body) {
				t.Errorf("expected error containing %q, got %q", tt.body, body["error"])
			}
		})
	}
}

func TestAPIKeyRequired(t *testing.T) {
	server := newTestServer("test-key")

	rec := do(t, server, "/api/raw/dashboard/summary", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	rec = do(t, server, "/api/raw/dashboard/summary", map[string]string{"X-API-Key": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}

	rec = do(t, server, "/api/raw/dashboard/summary", map[string]string{"X-API-Key": "test-key"})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with key, got %d", rec.Code)
	}

	// health stays open
	rec = do(t, server, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected open health check, got %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	server := newTestServer("")

	rec := do(t, server, "/health", map[string]string{HeaderRequestID: "abc-123"})
	if got := rec.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("expected echoed request id, got %q", got)
	}

	rec = do(t, server, "/health", nil)
	if got := rec.Header().Get(HeaderRequestID); len(got) != 36 {
		t.Errorf("expected generated uuid, got %q", got)
	}
}

func TestHistoryDisabled(t *testing.T) {
	server := newTestServer("")

	for _, target := range []string{"/api/raw/dashboard/history", "/api/raw/dashboard/history/1/checks"} {
		rec := do(t, server, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", target, rec.Code)
		}
	}
}

func TestHistoryEndpoints(t *testing.T) {
	server := newTestServer("")
	store := &mockHistory{
		scans: []history.Scan{{ID: 7, Counts: types.CheckCounts{Total: 2, Passing: 1, Fail: 1, Rate: 50}}},
		checks: map[int64][]types.CheckRecord{
			7: {
				{ID: "a.csv:rows", File: "a.csv", Status: types.CheckStatusPass},
				{ID: "b.csv:missing", File: "b.csv", Status: types.CheckStatusFail},
			},
		},
	}
	server.SetHistoryStore(store)

	rec := do(t, server, "/api/raw/dashboard/history?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var scans []history.Scan
	if err := json.NewDecoder(rec.Body).Decode(&scans); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(scans) != 1 || scans[0].ID != 7 || store.limit != 5 {
		t.Errorf("unexpected scans %+v (limit %d)", scans, store.limit)
	}

	rec = do(t, server, "/api/raw/dashboard/history/7/checks?status=fail", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		ScanID int64               `json:"scan_id"`
		Checks []types.CheckRecord `json:"checks"`
		Counts types.CheckCounts   `json:"counts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(result.Checks) != 1 || result.Checks[0].ID != "b.csv:missing" {
		t.Errorf("unexpected checks %+v", result.Checks)
	}
	if len(store.statuses) != 1 || store.statuses[0] != types.CheckStatusFail {
		t.Errorf("status filter not passed through: %v", store.statuses)
	}

	rec = do(t, server, "/api/raw/dashboard/history/99/checks", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown scan, got %d", rec.Code)
	}

	rec = do(t, server, "/api/raw/dashboard/history/7/checks?status=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad status, got %d", rec.Code)
	}

	rec = do(t, server, "/api/raw/dashboard/history/x/checks", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestHistoryStoreError(t *testing.T) {
	server := newTestServer("")
	server.SetHistoryStore(&mockHistory{err: errors.New("connection refused")})

	rec := do(t, server, "/api/raw/dashboard/history", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestParseStatuses(t *testing.T) {
	got, err := parseStatuses([]string{"pass,WARN", " Fail ", "unknown"})
	if err != nil {
		t.Fatal(err)
	}
	want := []types.CheckStatus{types.CheckStatusPass, types.CheckStatusWarn, types.CheckStatusFail, types.CheckStatusUnknown}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := parseStatuses([]string{"nope"}); err == nil {
		t.Error("expected error for invalid status")
	}
}

package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aaronwald/rawdash/internal/types"
)

func TestPreviewCommand(t *testing.T) {
	backend := newTestBackend(t)
	setupCLI(t, backend.URL)

	var buf bytes.Buffer
	previewCmd.SetOut(&buf)

	if err := runPreview(previewCmd, []string{"a.csv"}); err != nil {
		t.Fatalf("runPreview failed: %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], "Preview of a.csv (2 rows)") {
		t.Errorf("unexpected title: %q", lines[0])
	}
	if strings.Index(lines[1], "zeta") > strings.Index(lines[1], "alpha") {
		t.Errorf("columns not in backend order: %q", lines[1])
	}
	if got := backend.rowLimits(); len(got) != 1 || got[0] != "20" {
		t.Errorf("expected default row limit 20, got %v", got)
	}
}

func TestPreviewCommandRows(t *testing.T) {
	backend := newTestBackend(t)
	setupCLI(t, backend.URL)
	previewRows = 5

	var buf bytes.Buffer
	previewCmd.SetOut(&buf)

	if err := runPreview(previewCmd, []string{"a.csv"}); err != nil {
		t.Fatalf("runPreview failed: %v", err)
	}
	if got := backend.rowLimits(); len(got) != 1 || got[0] != "5" {
		t.Errorf("expected row limit 5, got %v", got)
	}
}

func TestPreviewCommandRowsOutOfRange(t *testing.T) {
	setupCLI(t, "http://localhost:1")
	previewRows = 501

	if err := runPreview(previewCmd, []string{"a.csv"}); err == nil {
		t.Error("expected error for row limit above maximum")
	}
}

func TestPreviewCommandJSON(t *testing.T) {
	backend := newTestBackend(t)
	setupCLI(t, backend.URL)
	previewOutput = "json"

	var buf bytes.Buffer
	previewCmd.SetOut(&buf)

	if err := runPreview(previewCmd, []string{"b.csv"}); err != nil {
		t.Fatalf("runPreview failed: %v", err)
	}

	var p types.PreviewPayload
	if err := json.Unmarshal(buf.Bytes(), &p); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if p.IsError() || len(p.PreviewRows) != 1 {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestPreviewCommandNotFound(t *testing.T) {
	backend := newTestBackend(t)
	setupCLI(t, backend.URL)

	var buf bytes.Buffer
	previewCmd.SetOut(&buf)

	err := runPreview(previewCmd, []string{"gone.csv"})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(buf.String(), `Request failed (404): {"error":"file not found: gone.csv"}`) {
		t.Errorf("expected backend error in output:\n%s", buf.String())
	}
}

func TestPreviewCommandRejectsPathNames(t *testing.T) {
	backend := newTestBackend(t)
	setupCLI(t, backend.URL)

	for _, name := range []string{"../a.csv", "dir/a.csv", "..", " "} {
		if err := runPreview(previewCmd, []string{name}); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
	if got := backend.rowLimits(); len(got) != 0 {
		t.Errorf("expected no preview requests, got %v", got)
	}
}

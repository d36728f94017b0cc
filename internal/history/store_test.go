package history

import (
	"strings"
	"testing"

	"github.com/aaronwald/rawdash/internal/types"
)

func TestBuildCheckInsert(t *testing.T) {
	checks := []types.CheckRecord{
		{ID: "a.csv:rows", File: "a.csv", Title: "rows", Status: types.CheckStatusPass, Observed: int64(10), Expected: "> 0"},
		{ID: "a.csv:missing", File: "a.csv", Title: "missing", Status: types.CheckStatusWarn, Details: map[string]int{"empty_cells": 3}},
	}

	query, args, err := buildCheckInsert(42, checks)
	if err != nil {
		t.Fatalf("buildCheckInsert failed: %v", err)
	}

	if !strings.Contains(query, "($1, $2, $3, $4, $5, $6, $7, $8), ($9, $10, $11, $12, $13, $14, $15, $16)") {
		t.Errorf("unexpected VALUES clause:\n%s", query)
	}
	if !strings.Contains(query, "ON CONFLICT (scan_id, check_id) DO NOTHING") {
		t.Errorf("missing conflict clause:\n%s", query)
	}
	if len(args) != 16 {
		t.Fatalf("expected 16 args, got %d", len(args))
	}
	if args[0] != int64(42) || args[8] != int64(42) {
		t.Errorf("scan id not bound: %v, %v", args[0], args[8])
	}
	if args[4] != "pass" || args[12] != "warn" {
		t.Errorf("unexpected statuses: %v, %v", args[4], args[12])
	}
	if args[5] != "10" || args[6] != `"> 0"` || args[7] != nil {
		t.Errorf("unexpected JSON values: %v, %v, %v", args[5], args[6], args[7])
	}
	if args[13] != nil || args[15] != `{"empty_cells":3}` {
		t.Errorf("unexpected JSON values: %v, %v", args[13], args[15])
	}
}

func TestJSONValueRejectsUnencodable(t *testing.T) {
	_, _, err := buildCheckInsert(1, []types.CheckRecord{{ID: "x", Observed: make(chan int)}})
	if err == nil {
		t.Error("expected error for unencodable value")
	}
}

func TestDecodeJSON(t *testing.T) {
	v, err := decodeJSON(nil)
	if err != nil || v != nil {
		t.Errorf("decodeJSON(nil) = %v, %v", v, err)
	}

	v, err = decodeJSON([]byte(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["a"] != float64(1) {
		t.Errorf("unexpected value %#v", v)
	}

	if _, err := decodeJSON([]byte(`{`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

// internal/api/handlers.go
package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/aaronwald/rawdash/internal/data"
	"github.com/aaronwald/rawdash/internal/history"
	"github.com/aaronwald/rawdash/internal/types"
)

const (
	DefaultPreviewRows = 20
	MaxPreviewRows     = 500
	MaxHistoryLimit    = 200
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	payload, fresh, err := s.catalog.Summary(r.Context())
	if err != nil {
		log.Printf("building summary: %v", err)
		writeError(w, http.StatusInternalServerError, "building summary")
		return
	}
	if fresh {
		log.Printf("scanned %d files, %d checks", len(payload.Files), len(payload.Checks))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleFilePreview(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	limit, err := parseLimit(r.URL.Query().Get("rows"), DefaultPreviewRows, MaxPreviewRows)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rows: "+err.Error())
		return
	}

	if _, err := s.storage.Stat(name); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found: "+name)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !data.IsCSVName(name) {
		writeError(w, http.StatusUnprocessableEntity, "preview is only available for CSV files: "+name)
		return
	}

	rows, err := data.ReadFileRows(s.storage, name, limit)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found: "+name)
			return
		}
		log.Printf("reading %s: %v", name, err)
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("could not read %s: %v", name, err))
		return
	}

	writeJSON(w, http.StatusOK, types.NewPreviewRows(rows))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history not enabled")
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"), history.DefaultListLimit, MaxHistoryLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit: "+err.Error())
		return
	}

	scans, err := s.history.ListScans(r.Context(), limit)
	if err != nil {
		log.Printf("listing scans: %v", err)
		writeError(w, http.StatusInternalServerError, "listing scans")
		return
	}
	if scans == nil {
		scans = []history.Scan{}
	}
	writeJSON(w, http.StatusOK, scans)
}

func (s *Server) handleHistoryChecks(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history not enabled")
		return
	}

	scanID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || scanID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid scan id")
		return
	}

	statuses, err := parseStatuses(r.URL.Query()["status"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	exists, err := s.history.ScanExists(r.Context(), scanID)
	if err != nil {
		log.Printf("looking up scan %d: %v", scanID, err)
		writeError(w, http.StatusInternalServerError, "looking up scan")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("scan not found: %d", scanID))
		return
	}

	checks, err := s.history.CheckResults(r.Context(), scanID, statuses)
	if err != nil {
		log.Printf("loading checks for scan %d: %v", scanID, err)
		writeError(w, http.StatusInternalServerError, "loading checks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scan_id": scanID,
		"checks":  checks,
		"counts":  types.CountChecks(checks),
	})
}

// parseLimit reads a positive integer query value, clamped to max
func parseLimit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	if n > max {
		n = max
	}
	return n, nil
}

// parseStatuses accepts repeated or comma-separated status values
func parseStatuses(values []string) ([]types.CheckStatus, error) {
	var out []types.CheckStatus
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			st, ok := types.LookupCheckStatus(part)
			if !ok {
				return nil, fmt.Errorf("invalid status %q (expected one of: %s)", part, types.CheckStatusNames())
			}
			out = append(out, st)
		}
	}
	return out, nil
}

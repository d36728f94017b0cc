// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/aaronwald/rawdash/internal/data"
	"github.com/aaronwald/rawdash/internal/history"
	"github.com/aaronwald/rawdash/internal/types"
)

// HistoryStore is the scan history surface the server reads from
type HistoryStore interface {
	ListScans(ctx context.Context, limit int) ([]history.Scan, error)
	ScanExists(ctx context.Context, scanID int64) (bool, error)
	CheckResults(ctx context.Context, scanID int64, statuses []types.CheckStatus) ([]types.CheckRecord, error)
}

var _ HistoryStore = (*history.Store)(nil)

type Server struct {
	storage data.Storage
	catalog *data.Catalog
	history HistoryStore
	apiKey  string
	mux     *http.ServeMux
}

// NewServer creates a server for the files in storage. An empty apiKey disables authentication.
func NewServer(storage data.Storage, catalog *data.Catalog, apiKey string) *Server {
	s := &Server{
		storage: storage,
		catalog: catalog,
		apiKey:  apiKey,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// SetHistoryStore enables the history endpoints
func (s *Server) SetHistoryStore(store HistoryStore) {
	s.history = store
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/raw/dashboard/summary", s.requireAPIKey(s.handleSummary))
	s.mux.HandleFunc("GET /api/raw/dashboard/file/{name}", s.requireAPIKey(s.handleFilePreview))
	s.mux.HandleFunc("GET /api/raw/dashboard/history", s.requireAPIKey(s.handleHistory))
	s.mux.HandleFunc("GET /api/raw/dashboard/history/{id}/checks", s.requireAPIKey(s.handleHistoryChecks))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := requestID(w, r)
	log.Printf("%s %s request_id=%s", r.Method, r.URL.Path, id)
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

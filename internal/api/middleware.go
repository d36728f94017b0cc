// internal/api/middleware.go
package api

import (
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID carries the per-request correlation id
const HeaderRequestID = "X-Request-ID"

func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	if s.apiKey == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" || key != s.apiKey {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// requestID echoes the caller's request id, or assigns one
func requestID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(HeaderRequestID, id)
	return id
}

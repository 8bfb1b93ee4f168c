package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"streamvault/internal/database"
	"streamvault/services/sync"
)

// adminResponse is the envelope returned by every admin mutation endpoint.
type adminResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeAdminOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, adminResponse{Success: true, Message: message, Data: data})
}

func writeAdminError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, adminResponse{Success: false, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusForError maps service and store errors onto HTTP status codes.
func statusForError(err error) int {
	var refErr *database.GenreReferencedError
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &refErr):
		return http.StatusConflict
	case errors.Is(err, sync.ErrAlreadyRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// clientIP extracts the caller's address for audit records, preferring
// proxy headers over the raw connection address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

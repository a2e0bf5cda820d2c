package handler

import (
	"encoding/json"
	"net/http"

	"print-ticket-server/internal/domain"
	apperrors "print-ticket-server/pkg/errors"
)

type contextKey string

const identityContextKey contextKey = "identity"

// GetIdentityFromContext extracts the verified caller identity from the
// request context.
func GetIdentityFromContext(r *http.Request) (*domain.Identity, bool) {
	identity, ok := r.Context().Value(identityContextKey).(*domain.Identity)
	return identity, ok
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeDomainError maps a domain error onto its structured response. Only
// the kind and message reach the caller; internal state stays internal.
func writeDomainError(w http.ResponseWriter, err error) {
	appErr := apperrors.FromDomain(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(appErr)
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"print-ticket-server/internal/domain"
)

// AuthMiddleware resolves bearer tokens into verified identities.
type AuthMiddleware struct {
	verifier domain.AuthVerifier
	logger   domain.Logger
}

func NewAuthMiddleware(verifier domain.AuthVerifier, logger domain.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// Middleware validates the Authorization header and stores the caller
// identity in the request context.
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		token := parts[1]
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Token required")
			return
		}

		identity, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warn("Token verification failed", "error", err)
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"print-ticket-server/internal/domain"
)

type mockVerifier struct {
	identity  *domain.Identity
	err       error
	lastToken string
}

func (m *mockVerifier) Verify(token string) (*domain.Identity, error) {
	m.lastToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.identity, nil
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	verifier := &mockVerifier{}
	logger := NewMockHandlerLogger()

	middleware := NewAuthMiddleware(verifier, logger).Middleware
	h := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("expected handler not to be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Authorization header required") {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestAuthMiddleware_InvalidFormat(t *testing.T) {
	verifier := &mockVerifier{}
	logger := NewMockHandlerLogger()

	middleware := NewAuthMiddleware(verifier, logger).Middleware
	h := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("expected handler not to be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid authorization header format") {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	verifier := &mockVerifier{err: errors.New("bad signature")}
	logger := NewMockHandlerLogger()

	middleware := NewAuthMiddleware(verifier, logger).Middleware
	h := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("expected handler not to be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if verifier.lastToken != "forged" {
		t.Fatalf("expected token passed to verifier, got %q", verifier.lastToken)
	}
}

func TestAuthMiddleware_StoresIdentityInContext(t *testing.T) {
	verifier := &mockVerifier{identity: &domain.Identity{ID: "user-1", IsAdmin: true}}
	logger := NewMockHandlerLogger()

	called := false
	middleware := NewAuthMiddleware(verifier, logger).Middleware
	h := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		identity, ok := GetIdentityFromContext(r)
		if !ok {
			t.Fatalf("expected identity in context")
		}
		if identity.ID != "user-1" || !identity.IsAdmin {
			t.Fatalf("unexpected identity: %+v", identity)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
}

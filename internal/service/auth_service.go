package service

import (
	"fmt"

	"print-ticket-server/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// SupabaseAuthVerifier resolves bearer tokens against Supabase Auth.
// Credential issuance, password hashing and one-time codes all live on
// the Supabase side; this service only consumes verified identities.
type SupabaseAuthVerifier struct {
	client *supabase.Client
	logger domain.Logger
}

// NewAuthVerifier creates the verifier. With no Supabase configuration the
// verifier still constructs but rejects every token, which keeps local
// tooling (tests, health checks) working without credentials.
func NewAuthVerifier(config domain.Config, logger domain.Logger) (domain.AuthVerifier, error) {
	supabaseURL := config.GetSupabaseURL()
	supabaseKey := config.GetSupabaseKey()

	verifier := &SupabaseAuthVerifier{logger: logger}
	if supabaseURL == "" || supabaseKey == "" {
		logger.Warn("Supabase not configured; all tokens will be rejected")
		return verifier, nil
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	verifier.client = client
	logger.Info("Supabase auth verifier initialized", "url", supabaseURL)
	return verifier, nil
}

// Verify validates the token and returns the caller identity. The admin
// flag comes from the user's metadata; the core trusts it as-is.
func (v *SupabaseAuthVerifier) Verify(token string) (*domain.Identity, error) {
	if v.client == nil {
		return nil, fmt.Errorf("%w: auth not configured", domain.ErrInvalidToken)
	}

	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	isAdmin := false
	if raw, ok := user.UserMetadata["is_admin"]; ok {
		if b, ok := raw.(bool); ok {
			isAdmin = b
		}
	}

	return &domain.Identity{
		ID:      user.ID.String(),
		IsAdmin: isAdmin,
	}, nil
}

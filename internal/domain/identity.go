package domain

import "io"

// Identity is the verified caller reference handed over by the auth
// collaborator. The core treats ID as opaque and only uses it as an
// ownership and authorization key.
type Identity struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"is_admin"`
}

// AuthVerifier resolves a bearer token into a verified identity.
// Credential issuance lives entirely outside this service.
type AuthVerifier interface {
	Verify(token string) (*Identity, error)
}

// Upload is one file of an incoming submission, in submission order.
type Upload struct {
	Filename  string
	MediaType string
	Content   io.Reader
}

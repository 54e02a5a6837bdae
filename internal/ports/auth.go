package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"
)

// ExternalIdentity is the verified result of an identity-provider check:
// an email plus the audience and expiry the provider attached to it.
type ExternalIdentity struct {
	Email     string
	Audience  string
	ExpiresAt time.Time
}

// IdentityProvider drives the redirect-based third-party login handshake and
// validates provider-issued credentials.
type IdentityProvider interface {
	// AuthCodeURL builds the provider redirect URL for login initiation,
	// carrying the opaque state value.
	AuthCodeURL(state string) string

	// Exchange completes the login flow server-to-server, swapping the
	// authorization code for a validated identity.
	Exchange(ctx context.Context, code string) (ExternalIdentity, error)

	// VerifyRawToken validates a raw provider-issued token. It bridges
	// legacy/alternate credential formats presented in the session cookie.
	VerifyRawToken(ctx context.Context, raw string) (ExternalIdentity, error)
}

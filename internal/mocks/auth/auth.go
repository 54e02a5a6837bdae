// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/inkhouse/storyapi/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.IdentityProvider = (*MockIdentityProvider)(nil)

// ErrUnknownCredential is returned by the mock for codes and raw tokens it
// was not configured to accept.
var ErrUnknownCredential = errors.New("unknown credential")

// MockIdentityProvider simulates an IdP for tests with deterministic
// exchange behavior: configured codes and raw tokens map to identities,
// everything else fails.
type MockIdentityProvider struct {
	AuthCodeURLFunc    func(state string) string
	ExchangeFunc       func(ctx context.Context, code string) (ports.ExternalIdentity, error)
	VerifyRawTokenFunc func(ctx context.Context, raw string) (ports.ExternalIdentity, error)

	// Deterministic values for predictable testing.
	AuthBase  string
	Codes     map[string]ports.ExternalIdentity
	RawTokens map[string]ports.ExternalIdentity
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		AuthBase:  "https://mock-idp/authorize",
		Codes:     map[string]ports.ExternalIdentity{},
		RawTokens: map[string]ports.ExternalIdentity{},
	}
}

// Accept registers a code that exchanges to a valid identity for email.
func (m *MockIdentityProvider) Accept(code, email string) *MockIdentityProvider {
	m.Codes[code] = ports.ExternalIdentity{
		Email:     email,
		Audience:  "storyapi-client",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return m
}

// AcceptRaw registers a raw provider token that verifies to email.
func (m *MockIdentityProvider) AcceptRaw(raw, email string) *MockIdentityProvider {
	m.RawTokens[raw] = ports.ExternalIdentity{
		Email:     email,
		Audience:  "storyapi-client",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return m
}

func (m *MockIdentityProvider) AuthCodeURL(state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}
	return m.AuthBase + "?state=" + state
}

func (m *MockIdentityProvider) Exchange(ctx context.Context, code string) (ports.ExternalIdentity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	if id, ok := m.Codes[code]; ok {
		return id, nil
	}
	return ports.ExternalIdentity{}, ErrUnknownCredential
}

func (m *MockIdentityProvider) VerifyRawToken(ctx context.Context, raw string) (ports.ExternalIdentity, error) {
	if m.VerifyRawTokenFunc != nil {
		return m.VerifyRawTokenFunc(ctx, raw)
	}
	if id, ok := m.RawTokens[raw]; ok {
		return id, nil
	}
	return ports.ExternalIdentity{}, ErrUnknownCredential
}

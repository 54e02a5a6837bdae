package devauth

// Package devauth provides a config-driven identity provider for local
// development. It short-circuits the OAuth flow by redirecting straight back
// to our own callback and accepting any code.

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/inkhouse/storyapi/internal/ports"
)

var _ ports.IdentityProvider = (*Provider)(nil)

// Config controls the dev auth provider behavior.
type Config struct {
	Email       string
	CallbackURL string        // default "/oauth/callback"
	TokenTTL    time.Duration // default 8h when zero
}

// Provider implements ports.IdentityProvider for local development. Exchange
// ignores the code and returns the configured identity; VerifyRawToken
// accepts the literal value "dev:<email>".
type Provider struct {
	email       string
	callbackURL string
	tokenTTL    time.Duration
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	callback := cfg.CallbackURL
	if callback == "" {
		callback = "/oauth/callback"
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	return &Provider{email: cfg.Email, callbackURL: callback, tokenTTL: ttl}, nil
}

// AuthCodeURL points back at our own callback with a fixed code.
func (p *Provider) AuthCodeURL(state string) string {
	return p.callbackURL + "?code=dev&state=" + url.QueryEscape(state)
}

// Exchange ignores the code and returns the configured identity.
func (p *Provider) Exchange(_ context.Context, code string) (ports.ExternalIdentity, error) {
	if code == "" {
		return ports.ExternalIdentity{}, errors.New("authorization code is required")
	}
	return p.identity(), nil
}

// VerifyRawToken accepts only the token "dev:<configured email>".
func (p *Provider) VerifyRawToken(_ context.Context, raw string) (ports.ExternalIdentity, error) {
	if raw != "dev:"+p.email {
		return ports.ExternalIdentity{}, errors.New("unrecognized dev token")
	}
	return p.identity(), nil
}

func (p *Provider) identity() ports.ExternalIdentity {
	return ports.ExternalIdentity{
		Email:     p.email,
		Audience:  "storyapi-dev",
		ExpiresAt: time.Now().Add(p.tokenTTL),
	}
}

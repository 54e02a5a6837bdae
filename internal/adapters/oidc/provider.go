package oidc

// Package oidc implements the identity-provider port against a real
// OIDC/OAuth2 authorization server.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/inkhouse/storyapi/internal/ports"
)

// Ensure compile-time conformance to the port.
var _ ports.IdentityProvider = (*Provider)(nil)

// Provider implements ports.IdentityProvider using OIDC code exchange and
// ID-token verification.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
	clientID     string
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider. Discovery happens once here.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scope := config.Scope
	if scope == "" {
		scope = "openid email"
	}

	p := &Provider{
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
		clientID:     config.ClientID,
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
	}
	return p, nil
}

// AuthCodeURL builds the provider authorization URL carrying the opaque
// state value.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange swaps the authorization code for tokens server-to-server and
// validates the returned ID token's signature, audience, and expiry.
func (p *Provider) Exchange(ctx context.Context, code string) (ports.ExternalIdentity, error) {
	if code == "" {
		return ports.ExternalIdentity{}, errors.New("authorization code is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return ports.ExternalIdentity{}, errors.New("token response has no id_token")
	}
	return p.verifyIDToken(ctx, rawIDToken)
}

// VerifyRawToken validates a raw provider-issued ID token. It backs the
// legacy-cookie upgrade path in the auth gate.
func (p *Provider) VerifyRawToken(ctx context.Context, raw string) (ports.ExternalIdentity, error) {
	if raw == "" {
		return ports.ExternalIdentity{}, errors.New("token is required")
	}
	return p.verifyIDToken(ctx, raw)
}

func (p *Provider) verifyIDToken(ctx context.Context, raw string) (ports.ExternalIdentity, error) {
	// Verify checks signature, issuer, audience, and expiry against the
	// discovered configuration.
	idToken, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if claims.Email == "" {
		return ports.ExternalIdentity{}, errors.New("id_token has no email claim")
	}

	audience := p.clientID
	if len(idToken.Audience) > 0 {
		audience = idToken.Audience[0]
	}
	return ports.ExternalIdentity{
		Email:     claims.Email,
		Audience:  audience,
		ExpiresAt: idToken.Expiry,
	}, nil
}

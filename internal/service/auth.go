package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainauth "github.com/inkhouse/storyapi/internal/domain/auth"
	"github.com/inkhouse/storyapi/internal/ports"
	"github.com/inkhouse/storyapi/internal/token"
)

// ErrInvalidState is returned when a callback state token fails verification.
var ErrInvalidState = errors.New("invalid or expired state token")

// ErrExchangeFailed is returned when the provider code exchange or its
// identity validation fails. Provider details stay in the logs.
var ErrExchangeFailed = errors.New("identity provider exchange failed")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Codec    *token.Codec
	Provider ports.IdentityProvider
	Accounts *AccountService
	Logger   *slog.Logger
}

// AuthService drives the external login handshake and session lifecycle.
type AuthService struct {
	codec    *token.Codec
	provider ports.IdentityProvider
	accounts *AccountService
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Codec == nil || opts.Provider == nil || opts.Accounts == nil {
		panic("AuthService requires codec, provider, and accounts")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		codec:    opts.Codec,
		provider: opts.Provider,
		accounts: opts.Accounts,
		logger:   logger,
	}
}

// BeginLogin mints a state token carrying the caller origin and returns the
// provider authorization URL to redirect to.
func (s *AuthService) BeginLogin(returnTo string) (string, error) {
	state, err := s.codec.SignState(returnTo)
	if err != nil {
		return "", err
	}
	return s.provider.AuthCodeURL(state), nil
}

// ConsumeState verifies a callback state token and returns the origin it
// carries.
func (s *AuthService) ConsumeState(raw string) (string, error) {
	returnTo, ok := s.codec.VerifyState(raw)
	if !ok {
		return "", ErrInvalidState
	}
	return returnTo, nil
}

// CompleteLogin exchanges an authorization code for a verified external
// identity, resolves its role, and mints a session token. A missing role
// surfaces as ErrNoRole so callers can answer 403 rather than 500.
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (sessionToken string, identity domainauth.Identity, err error) {
	ext, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.logger.ErrorContext(ctx, "code exchange failed", "error", err)
		return "", domainauth.Identity{}, ErrExchangeFailed
	}
	return s.establishSession(ctx, ext)
}

// VerifySession resolves a session token into an identity. The second return
// is false for any token failure; ErrNoRole reports a valid token whose
// email no longer has access.
func (s *AuthService) VerifySession(ctx context.Context, raw string) (domainauth.Identity, bool, error) {
	email, ok := s.codec.VerifySession(raw)
	if !ok {
		return domainauth.Identity{}, false, nil
	}
	role, err := s.accounts.ResolveRole(ctx, email)
	if err != nil {
		return domainauth.Identity{}, true, err
	}
	return domainauth.Identity{Email: email, Role: role}, true, nil
}

// UpgradeRawToken bridges older credential formats: it validates the cookie
// value as a raw provider token and, on success, mints a durable session for
// the same email.
func (s *AuthService) UpgradeRawToken(ctx context.Context, raw string) (sessionToken string, identity domainauth.Identity, err error) {
	ext, err := s.provider.VerifyRawToken(ctx, raw)
	if err != nil {
		return "", domainauth.Identity{}, ErrExchangeFailed
	}
	return s.establishSession(ctx, ext)
}

// SessionTTL exposes the configured session lifetime for cookie Max-Age.
func (s *AuthService) SessionTTL() time.Duration {
	return s.codec.SessionTTL()
}

func (s *AuthService) establishSession(ctx context.Context, ext ports.ExternalIdentity) (string, domainauth.Identity, error) {
	role, err := s.accounts.ResolveRole(ctx, ext.Email)
	if err != nil {
		return "", domainauth.Identity{}, err
	}
	sessionToken, err := s.codec.SignSession(ext.Email)
	if err != nil {
		return "", domainauth.Identity{}, err
	}
	return sessionToken, domainauth.Identity{Email: ext.Email, Role: role}, nil
}

// Package token produces and verifies the compact signed tokens used for
// sessions and OAuth anti-CSRF state. Tokens are HS256-signed three-segment
// values (header.payload.signature, each base64url) with no server-side state.
package token

import (
	"crypto/sha256"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultSessionTTL is the session token lifetime. Sessions are never
	// revoked server-side; expiry is the only invalidation.
	DefaultSessionTTL = 180 * 24 * time.Hour
	// DefaultStateTTL bounds the window between login initiation and the
	// provider redirecting back.
	DefaultStateTTL = 5 * time.Minute

	// Audience values keep the two token purposes namespaced so a state
	// token can never verify as a session token.
	audSession = "storyapi/session"
	audState   = "storyapi/state"
)

// Config controls token lifetimes and the signing secret.
type Config struct {
	Secret     string
	SessionTTL time.Duration // default DefaultSessionTTL when zero
	StateTTL   time.Duration // default DefaultStateTTL when zero
	Now        func() time.Time
}

// Codec signs and verifies session and state tokens. The signing key is
// derived from the secret once, on first use, and is read-only afterwards,
// so a single Codec is safe to share across requests.
type Codec struct {
	secret     string
	sessionTTL time.Duration
	stateTTL   time.Duration
	now        func() time.Time

	keyOnce sync.Once
	key     []byte
}

// NewCodec constructs a Codec from Config.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	c := &Codec{
		secret:     cfg.Secret,
		sessionTTL: cfg.SessionTTL,
		stateTTL:   cfg.StateTTL,
		now:        cfg.Now,
	}
	if c.sessionTTL <= 0 {
		c.sessionTTL = DefaultSessionTTL
	}
	if c.stateTTL <= 0 {
		c.stateTTL = DefaultStateTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// signingKey derives the HMAC key lazily and memoizes it. Callers never see
// the raw key.
func (c *Codec) signingKey() []byte {
	c.keyOnce.Do(func() {
		sum := sha256.Sum256([]byte(c.secret))
		c.key = sum[:]
	})
	return c.key
}

// sessionClaims is the session token payload: a verified email bounded by
// issued-at and expiry.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// stateClaims is the OAuth anti-CSRF state payload. ReturnTo carries the
// originating request's origin to support multi-origin deployments.
type stateClaims struct {
	ReturnTo string `json:"return_to"`
	jwt.RegisteredClaims
}

// SignSession mints a session token for the given email.
func (c *Codec) SignSession(email string) (string, error) {
	now := c.now()
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audSession},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey())
}

// VerifySession verifies a session token and returns the embedded email.
// Every failure mode (structure, signature, expiry, malformed payload)
// resolves to ok=false; callers cannot distinguish tampering from expiry.
func (c *Codec) VerifySession(token string) (string, bool) {
	var claims sessionClaims
	if !c.verify(token, &claims, audSession) {
		return "", false
	}
	if claims.Email == "" {
		return "", false
	}
	return claims.Email, true
}

// SignState mints a short-lived OAuth state token carrying the caller origin.
func (c *Codec) SignState(returnTo string) (string, error) {
	now := c.now()
	claims := stateClaims{
		ReturnTo: returnTo,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audState},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.stateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey())
}

// VerifyState verifies a state token and returns the embedded origin.
func (c *Codec) VerifyState(token string) (string, bool) {
	var claims stateClaims
	if !c.verify(token, &claims, audState) {
		return "", false
	}
	return claims.ReturnTo, true
}

// SessionTTL returns the configured session lifetime, used for cookie Max-Age.
func (c *Codec) SessionTTL() time.Duration { return c.sessionTTL }

func (c *Codec) verify(token string, claims jwt.Claims, audience string) bool {
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.signingKey(), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	return err == nil && parsed.Valid
}

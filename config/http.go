package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is this deployment's own external origin
	// (e.g. "https://stories.example.com"). The OAuth callback compares it
	// against a login's return origin to decide between setting the session
	// cookie directly and relaying the token to a sibling deployment.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// SecureCookies marks session cookies Secure. Leave off only for
	// plain-http development.
	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"true"`

	// TrustProxy honors X-Forwarded-Proto from the front proxy when
	// reconstructing a caller's origin. Enable only when the proxy strips
	// the client's own copy of the header.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.BaseURL = strings.TrimSuffix(strings.TrimSpace(h.BaseURL), "/")
	if h.Addr == "" {
		h.Addr = ":8080"
	}
}

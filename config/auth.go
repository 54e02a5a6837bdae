package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeDev uses the dev identity provider (for development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, dev)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"storyapi"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/oauth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls the dev identity provider.
// Used when AUTH_MODE=dev for development and testing.
type DevAuthConfig struct {
	Email string `env:"EMAIL" envDefault:"dev@example.com"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// SessionSecret is the HMAC key for session and state tokens.
	// Required; rotating it invalidates every outstanding session.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// SessionTTL bounds how long a signed-in session stays valid.
	// 4320h is 180 days.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"4320h"`

	// StateTTL bounds how long a login handshake may take.
	StateTTL time.Duration `env:"STATE_TTL" envDefault:"5m"`

	// AllowedReturnOrigins lists sibling deployment origins that login may
	// return to (comma separated). Any other return_to is ignored.
	AllowedReturnOrigins []string `env:"ALLOWED_RETURN_ORIGINS"`

	// PublicView opens read-only story routes to anonymous visitors.
	PublicView bool `env:"PUBLIC_VIEW" envDefault:"false"`

	// HooksToken guards the story generation intake endpoint.
	// Leave empty to disable the endpoint.
	HooksToken string `env:"HOOKS_TOKEN"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=dev).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize applies guardrails to authentication configuration values.
func (c *AuthConfig) Sanitize() {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 4320 * time.Hour
	}
	if c.StateTTL <= 0 {
		c.StateTTL = 5 * time.Minute
	}
	c.HooksToken = strings.TrimSpace(c.HooksToken)

	origins := c.AllowedReturnOrigins[:0]
	for _, origin := range c.AllowedReturnOrigins {
		origin = strings.TrimSuffix(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	c.AllowedReturnOrigins = origins
}

package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	domainauth "github.com/inkhouse/storyapi/internal/domain/auth"
	"github.com/inkhouse/storyapi/internal/observability/statsd"
	"github.com/inkhouse/storyapi/internal/service"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// publicPaths are the read-only paths reachable anonymously when public view
// is enabled: the home page, the story list, single stories and their
// next/prev variants, and media bytes.
var publicPaths = []*regexp.Regexp{ //nolint:gochecknoglobals // static route configuration
	regexp.MustCompile(`^/$`),
	regexp.MustCompile(`^/index\.html$`),
	regexp.MustCompile(`^/stories$`),
	regexp.MustCompile(`^/stories/\d+(?:/(?:next|prev))?$`),
	regexp.MustCompile(`^/media/[^/]+$`),
}

// AuthGateOptions groups dependencies for AuthGate.
type AuthGateOptions struct {
	Auth       *service.AuthService
	PublicView bool
	Secure     bool // mark session cookies Secure; off for plain-http dev
	Logger     *slog.Logger
	Stats      statsd.Sink // optional
}

// AuthGate is the authorization chokepoint every authenticated route passes
// through. It never mutates persistent state; its only side effect is an
// occasional Set-Cookie on an upgrade redirect.
type AuthGate struct {
	auth       *service.AuthService
	publicView bool
	secure     bool
	logger     *slog.Logger
	stats      statsd.Sink
}

var _ Gate = (*AuthGate)(nil)

// NewAuthGate constructs an AuthGate.
func NewAuthGate(opts AuthGateOptions) *AuthGate {
	if opts.Auth == nil {
		panic("AuthGate requires an auth service")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthGate{
		auth:       opts.Auth,
		publicView: opts.PublicView,
		secure:     opts.Secure,
		logger:     logger,
		stats:      opts.Stats,
	}
}

// Evaluate runs the per-request state machine: public short-circuit, cookie
// extraction, session verification, legacy-token upgrade, role resolution.
func (g *AuthGate) Evaluate(r *http.Request) Decision {
	cookie, cookieErr := r.Cookie(SessionCookieName)
	hasCookie := cookieErr == nil && cookie.Value != ""

	// public reads with no cookie skip authentication entirely
	if !hasCookie && g.isPublicRead(r) {
		g.count("anonymous")
		return Proceed{Identity: domainauth.Anonymous()}
	}

	if !hasCookie {
		g.count("redirect_login")
		return g.redirectToLogin()
	}

	identity, valid, err := g.auth.VerifySession(r.Context(), cookie.Value)
	if valid {
		if err != nil {
			// valid token, but the email lost (or never had) access
			g.count("forbidden")
			return g.forbidden()
		}
		g.count("proceed")
		return Proceed{Identity: identity}
	}

	// not a session token: maybe a raw provider token from an older client
	if sessionToken, _, upgradeErr := g.auth.UpgradeRawToken(r.Context(), cookie.Value); upgradeErr == nil {
		g.count("upgrade")
		return g.upgradeRedirect(sessionToken, r.URL.RequestURI())
	} else if errors.Is(upgradeErr, service.ErrNoRole) {
		g.count("forbidden")
		return g.forbidden()
	}

	if g.isPublicRead(r) {
		g.count("anonymous")
		return Proceed{Identity: domainauth.Anonymous()}
	}
	g.count("redirect_login")
	return g.redirectToLogin()
}

// SessionCookie builds the session cookie with the gate's security settings.
func (g *AuthGate) SessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (g *AuthGate) isPublicRead(r *http.Request) bool {
	if !g.publicView || r.Method != http.MethodGet {
		return false
	}
	for _, p := range publicPaths {
		if p.MatchString(r.URL.Path) {
			return true
		}
	}
	return false
}

func (g *AuthGate) redirectToLogin() Decision {
	return ShortCircuit{Respond: func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	}}
}

func (g *AuthGate) forbidden() Decision {
	return ShortCircuit{Respond: func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "forbidden",
			Err:     errors.New("account has no access"),
		})
	}}
}

// upgradeRedirect re-issues the original request after swapping the legacy
// cookie for a freshly minted session.
func (g *AuthGate) upgradeRedirect(sessionToken, originalURL string) Decision {
	return ShortCircuit{Respond: func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, g.SessionCookie(sessionToken, g.auth.SessionTTL()))
		http.Redirect(w, r, originalURL, http.StatusFound)
	}}
}

func (g *AuthGate) count(outcome string) {
	if g.stats != nil {
		g.stats.Count("auth.decision", 1, map[string]string{"outcome": outcome})
	}
}

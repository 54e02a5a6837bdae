package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/inkhouse/storyapi/internal/service"
)

// AuthHandlers serves login initiation, the OAuth callback, logout, and the
// identity echo.
type AuthHandlers struct {
	Svc    *service.AuthService
	Gate   *AuthGate
	Origin string // this deployment's own origin, e.g. "https://stories.example.com"
	// SiblingOrigins are the only origins besides Origin that a session
	// token may be relayed to after the OAuth callback.
	SiblingOrigins []string
	// TrustProxy allows X-Forwarded-Proto to override the request scheme.
	TrustProxy bool
	Logger     *slog.Logger
}

// noCache suppresses caching and referrer leakage on auth responses. Both
// login hops carry either a state token or a session token in the URL.
func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")
}

// Login initiates the external login handshake: mint a state token carrying
// the caller origin and redirect to the provider. A supplied return_to is
// honored only when it names this deployment or a configured sibling; anything
// else falls back to the request's own origin so the callback can never be
// steered into relaying a session token to a foreign host.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request, _ Match) {
	noCache(w)

	returnTo := r.URL.Query().Get("return_to")
	if returnTo == "" || !h.relayAllowed(returnTo) {
		returnTo = requestOrigin(r, h.TrustProxy)
	}

	authURL, err := h.Svc.BeginLogin(returnTo)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "login initiation failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: errors.New("login unavailable")})
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback finishes the handshake. Two sub-cases: a relayed session token
// from another origin's callback, or an authorization code from the provider.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request, _ Match) {
	noCache(w)
	q := r.URL.Query()

	if relayed := q.Get("session"); relayed != "" {
		h.relayCase(w, r, relayed)
		return
	}
	if q.Get("code") != "" && q.Get("state") != "" {
		h.codeCase(w, r, q.Get("code"), q.Get("state"))
		return
	}
	WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_callback", Err: errors.New("missing code/state or session parameter")})
}

// relayCase accepts an already-minted session token hopped across origins.
func (h *AuthHandlers) relayCase(w http.ResponseWriter, r *http.Request, relayed string) {
	_, valid, err := h.Svc.VerifySession(r.Context(), relayed)
	if !valid {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_session", Err: errors.New("relayed session token is invalid")})
		return
	}
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "forbidden", Err: errors.New("account has no access")})
		return
	}
	http.SetCookie(w, h.Gate.SessionCookie(relayed, h.Svc.SessionTTL()))
	http.Redirect(w, r, "/", http.StatusFound)
}

// codeCase verifies state, exchanges the code, and either sets the cookie
// (same origin) or relays the token to the originating origin.
func (h *AuthHandlers) codeCase(w http.ResponseWriter, r *http.Request, code, state string) {
	returnTo, err := h.Svc.ConsumeState(state)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_state", Err: errors.New("state parameter is missing or invalid")})
		return
	}

	sessionToken, _, err := h.Svc.CompleteLogin(r.Context(), code)
	switch {
	case errors.Is(err, service.ErrNoRole):
		WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "forbidden", Err: errors.New("account has no access")})
		return
	case err != nil:
		h.logger().ErrorContext(r.Context(), "login completion failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "upstream", Err: errors.New("sign-in failed")})
		return
	}

	// The state is signed, but re-check the destination anyway so a token
	// minted under an older origin configuration still cannot leave the
	// allowed set. Unknown destinations get the cookie here instead.
	if h.sameOrigin(returnTo) || !h.relayAllowed(returnTo) {
		http.SetCookie(w, h.Gate.SessionCookie(sessionToken, h.Svc.SessionTTL()))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	// cross-origin: hand the token to the sibling's own callback, which
	// lands in relayCase on the next hop
	relay := strings.TrimSuffix(returnTo, "/") + "/oauth/callback?session=" + url.QueryEscape(sessionToken)
	http.Redirect(w, r, relay, http.StatusFound)
}

// Logout clears the session cookie. Sessions are stateless, so there is
// nothing server-side to revoke.
func (h *AuthHandlers) Logout(w http.ResponseWriter, _ *http.Request, _ Match) {
	noCache(w)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Status echoes the resolved identity.
func (h *AuthHandlers) Status(w http.ResponseWriter, _ *http.Request, m Match) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"email":     m.Identity.Email,
		"role":      m.Identity.Role,
		"anonymous": m.Identity.IsAnonymous(),
	})
}

func (h *AuthHandlers) sameOrigin(returnTo string) bool {
	if returnTo == "" {
		return true
	}
	return strings.TrimSuffix(returnTo, "/") == strings.TrimSuffix(h.Origin, "/")
}

// relayAllowed reports whether returnTo names this deployment or a
// configured sibling origin.
func (h *AuthHandlers) relayAllowed(returnTo string) bool {
	if h.sameOrigin(returnTo) {
		return true
	}
	want := strings.TrimSuffix(returnTo, "/")
	for _, origin := range h.SiblingOrigins {
		if want == strings.TrimSuffix(origin, "/") {
			return true
		}
	}
	return false
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// requestOrigin reconstructs the caller's origin from the request.
// X-Forwarded-Proto is honored only when the deployment declares its proxy
// trusted, since the header is otherwise caller-controlled.
func requestOrigin(r *http.Request, trustProxy bool) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
			scheme = fwd
		}
	}
	return scheme + "://" + r.Host
}

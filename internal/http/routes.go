package httpx

import (
	"log/slog"
	"net/http"

	"github.com/inkhouse/storyapi/internal/observability/statsd"
	"github.com/inkhouse/storyapi/internal/service"
)

// RouterServices holds everything the HTTP layer needs.
type RouterServices struct {
	Auth     *service.AuthService
	Stories  *service.StoryService
	Media    *service.MediaService
	Accounts *service.AccountService

	// Origin is this deployment's own external origin, used to decide
	// whether an OAuth callback can set the cookie directly or must relay
	// the session token to a sibling deployment.
	Origin string
	// SiblingOrigins are the only other origins login may return to.
	SiblingOrigins []string
	// TrustProxy honors X-Forwarded-Proto when reconstructing the caller
	// origin. Enable only behind a proxy that sets the header itself.
	TrustProxy bool
	// PublicView opens read-only story routes to anonymous callers.
	PublicView bool
	// SecureCookies marks session cookies Secure; off for plain-http dev.
	SecureCookies bool
	// HooksToken guards the /hooks endpoints; empty disables them.
	HooksToken string

	IsDev  bool
	Logger *slog.Logger
	Stats  statsd.Sink // optional
}

// NewHandler builds the full HTTP handler: recovery and request logging
// around the two-phase router.
func NewHandler(services RouterServices) http.Handler {
	gate := NewAuthGate(AuthGateOptions{
		Auth:       services.Auth,
		PublicView: services.PublicView,
		Secure:     services.SecureCookies,
		Logger:     services.Logger,
		Stats:      services.Stats,
	})

	authHandlers := &AuthHandlers{
		Svc:            services.Auth,
		Gate:           gate,
		Origin:         services.Origin,
		SiblingOrigins: services.SiblingOrigins,
		TrustProxy:     services.TrustProxy,
		Logger:         services.Logger,
	}
	storyHandlers := &StoryHandlers{Svc: services.Stories, Logger: services.Logger}
	mediaHandlers := &MediaHandlers{Svc: services.Media}
	accountHandlers := &AccountHandlers{Svc: services.Accounts, Logger: services.Logger}
	hookHandlers := &HookHandlers{Svc: services.Stories, Media: services.Media, Token: services.HooksToken}
	assetHandlers := NewAssetHandlers(services.IsDev, services.Logger)

	// Pre-auth rules run before the gate, always anonymous. Only endpoints
	// that must work without a session belong here.
	preAuth := []Rule{
		NewRule(http.MethodGet, `/login`, authHandlers.Login),
		NewRule(http.MethodGet, `/oauth/callback`, authHandlers.Callback),
		NewRule(http.MethodPost, `/logout`, authHandlers.Logout),
		NewRule(http.MethodGet, `/healthz`, Health),
		NewRule(http.MethodHead, `/healthz`, Health),
		NewRule(http.MethodPost, `/hooks/generate`, hookHandlers.Generate),
		NewRule(http.MethodPost, `/hooks/media`, hookHandlers.UploadMedia),
		NewRule(http.MethodPut, `/hooks/stories/(\d+)`, hookHandlers.UpdateStory),
		NewRule(http.MethodGet, `/assets/.+`, assetHandlers.Asset),
	}

	// Authenticated rules are evaluated in declaration order after the gate
	// admits the request. More specific story paths come before the bare
	// {id} pattern so /stories/5/next never binds as an id.
	authed := []Rule{
		NewRule(http.MethodGet, `/`, assetHandlers.Index),
		NewRule(http.MethodGet, `/index\.html`, assetHandlers.Index),

		NewRule(http.MethodGet, `/stories`, storyHandlers.List),
		NewRule(http.MethodPost, `/stories`, storyHandlers.Create),
		NewRule(http.MethodGet, `/stories/(\d+)/next`, storyHandlers.Next),
		NewRule(http.MethodGet, `/stories/(\d+)/prev`, storyHandlers.Prev),
		NewRule(http.MethodGet, `/stories/(\d+)`, storyHandlers.Get),
		NewRule(http.MethodPut, `/stories/(\d+)`, storyHandlers.Update),
		NewRule(http.MethodDelete, `/stories/(\d+)`, storyHandlers.Delete),

		NewRule(http.MethodGet, `/media/([^/]+)`, mediaHandlers.Get),
		NewRule(http.MethodPost, `/media`, mediaHandlers.Upload),
		NewRule(http.MethodDelete, `/media/([^/]+)`, mediaHandlers.Delete),

		NewRule(http.MethodGet, `/accounts`, accountHandlers.List),
		NewRule(http.MethodPost, `/accounts`, accountHandlers.Create),
		NewRule(http.MethodDelete, `/accounts/([^/]+)`, accountHandlers.Delete),

		NewRule(http.MethodGet, `/auth/status`, authHandlers.Status),
	}

	router := NewRouter(preAuth, authed, gate)

	var handler http.Handler = router
	handler = Logging(services.Logger)(handler)
	handler = Recover(services.Logger)(handler)
	return handler
}

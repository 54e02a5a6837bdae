package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/inkhouse/storyapi/config"
	httpx "github.com/inkhouse/storyapi/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := httpx.NewHandler(httpx.RouterServices{
		Auth:           cfg.Services.Auth,
		Stories:        cfg.Services.Stories,
		Media:          cfg.Services.Media,
		Accounts:       cfg.Services.Accounts,
		Origin:         appCfg.HTTP.BaseURL,
		SiblingOrigins: appCfg.Auth.AllowedReturnOrigins,
		TrustProxy:     appCfg.HTTP.TrustProxy,
		PublicView:     appCfg.Auth.PublicView,
		SecureCookies:  appCfg.HTTP.SecureCookies && !appCfg.IsDev,
		HooksToken:     appCfg.Auth.HooksToken,
		IsDev:          appCfg.IsDev,
		Logger:         logger,
		Stats:          cfg.Services.Metrics,
	})

	return startServer(logger, handler, appCfg.HTTP.Addr)
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/inkhouse/storyapi/config"
	"github.com/inkhouse/storyapi/internal/adapters/warmer"
)

// RunConfig groups everything Run needs to supervise the process.
type RunConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// Run starts the HTTP server and the list warmer, then blocks until a
// shutdown signal arrives or a supervised goroutine fails.
func Run(ctx context.Context, cfg RunConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Config.Warmer.Enabled {
		runner, err := warmer.New(warmer.Options{
			Stories:  cfg.Services.Stories,
			Schedule: cfg.Config.Warmer.Schedule,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("init list warmer: %w", err)
		}
		g.Go(func() error {
			return runner.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(context.Background(), server, logger)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	if cfg.Services.Metrics != nil {
		if err := cfg.Services.Metrics.Close(); err != nil {
			logger.Warn("close statsd client failed", "error", err)
		}
	}
	return nil
}

package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/inkhouse/storyapi/config"
	"github.com/inkhouse/storyapi/internal/adapters/devauth"
	"github.com/inkhouse/storyapi/internal/adapters/oidc"
	"github.com/inkhouse/storyapi/internal/adapters/s3media"
	"github.com/inkhouse/storyapi/internal/core"
	"github.com/inkhouse/storyapi/internal/data"
	"github.com/inkhouse/storyapi/internal/observability/statsd"
	"github.com/inkhouse/storyapi/internal/ports"
	"github.com/inkhouse/storyapi/internal/service"
	"github.com/inkhouse/storyapi/internal/token"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Stories  *service.StoryService
	Media    *service.MediaService
	Accounts *service.AccountService
	Auth     *service.AuthService

	Metrics *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient *redis.Client // optional; nil disables the list cache
	Logger      *slog.Logger
}

// InitServices wires repositories, adapters, and services together.
func InitServices(ctx context.Context, deps ServiceDeps) (ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	codec, err := token.NewCodec(token.Config{
		Secret:     cfg.Auth.SessionSecret,
		SessionTTL: cfg.Auth.SessionTTL,
		StateTTL:   cfg.Auth.StateTTL,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init token codec: %w", err)
	}

	provider, err := buildIdentityProvider(cfg)
	if err != nil {
		return ServiceContainer{}, err
	}

	store, err := s3media.New(ctx, s3media.Config{
		Bucket:       cfg.Storage.Bucket,
		Region:       cfg.Storage.Region,
		Endpoint:     cfg.Storage.Endpoint,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		UsePathStyle: cfg.Storage.UsePathStyle,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init object store: %w", err)
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		// metrics are never fatal; run without them
		logger.Warn("statsd client unavailable", "error", err)
		metrics = nil
	}

	var listCache core.ListCache
	if deps.RedisClient != nil && cfg.Cache.Enabled {
		listCache = data.NewRedisListCache(deps.RedisClient, cfg.Cache.ListTTL, logger)
	}

	accounts := service.NewAccountService(service.AccountServiceOptions{
		Repo:   data.NewAccountRepo(deps.DB),
		Logger: logger,
	})
	stories := service.NewStoryService(service.StoryServiceOptions{
		Repo:   data.NewStoryRepo(deps.DB),
		Cache:  listCache,
		Logger: logger,
	})
	media := service.NewMediaService(service.MediaServiceOptions{
		Repo:   data.NewMediaRepo(deps.DB),
		Store:  store,
		Logger: logger,
	})
	auth := service.NewAuthService(service.AuthServiceOptions{
		Codec:    codec,
		Provider: provider,
		Accounts: accounts,
		Logger:   logger,
	})

	return ServiceContainer{
		Stories:  stories,
		Media:    media,
		Accounts: accounts,
		Auth:     auth,
		Metrics:  metrics,
	}, nil
}

// buildIdentityProvider picks the identity provider per AUTH_MODE.
func buildIdentityProvider(cfg *config.AppConfig) (ports.IdentityProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeDev:
		provider, err := devauth.NewProvider(devauth.Config{
			Email:    cfg.Auth.DevAuth.Email,
			TokenTTL: cfg.Auth.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("init dev auth provider: %w", err)
		}
		return provider, nil
	case config.AuthModeOAuth:
		provider, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.Auth.OAuth.ClientID,
			ClientSecret: cfg.Auth.OAuth.ClientSecret,
			RedirectURL:  cfg.Auth.OAuth.RedirectURL,
			Scope:        cfg.Auth.OAuth.Scope,
			DiscoveryURL: cfg.Auth.OAuth.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init oidc provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

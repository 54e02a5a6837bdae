package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthModeUnmarshal(t *testing.T) {
	tests := []struct {
		input       string
		expected    AuthMode
		expectError bool
	}{
		{input: "oauth", expected: AuthModeOAuth},
		{input: "OAuth", expected: AuthModeOAuth},
		{input: "dev", expected: AuthModeDev},
		{input: "mock", expectError: true},
		{input: "", expectError: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var mode AuthMode
			err := mode.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("STORAGE_BUCKET", "stories-media")
	t.Setenv("AUTH_MODE", "dev")
	t.Setenv("PUBLIC_VIEW", "true")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("APP_BASE_URL", "https://stories.example.com/")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeDev, cfg.Auth.Mode)
	assert.Equal(t, "s3cret", cfg.Auth.SessionSecret)
	assert.True(t, cfg.Auth.PublicView)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "stories-media", cfg.Storage.Bucket)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "https://stories.example.com", cfg.HTTP.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 4320*time.Hour, cfg.Auth.SessionTTL, "sessions last 180 days by default")
	assert.Equal(t, 5*time.Minute, cfg.Auth.StateTTL, "login handshakes stay short-lived")
	assert.Equal(t, 5*time.Minute, cfg.Cache.ListTTL)
}

func TestAllowedReturnOriginsParsed(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("STORAGE_BUCKET", "stories-media")
	t.Setenv("ALLOWED_RETURN_ORIGINS", "https://mirror.example.com/, ,https://beta.example.com")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t,
		[]string{"https://mirror.example.com", "https://beta.example.com"},
		cfg.Auth.AllowedReturnOrigins)
}

func TestRequiredFieldsEnforced(t *testing.T) {
	t.Setenv("STORAGE_BUCKET", "stories-media")
	// SESSION_SECRET deliberately unset

	var cfg AppConfig
	err := env.Parse(&cfg)
	assert.Error(t, err, "missing session secret must fail fast")
}

func TestSanitizeGuardrails(t *testing.T) {
	cfg := AppConfig{}
	cfg.Auth.SessionTTL = -time.Hour
	cfg.Auth.StateTTL = 0
	cfg.Auth.HooksToken = "  tok  "
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.StatsdAddress = "   "
	cfg.Warmer.Schedule = ""
	cfg.Sanitize()

	assert.Equal(t, 4320*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.Auth.StateTTL)
	assert.Equal(t, "tok", cfg.Auth.HooksToken)
	assert.False(t, cfg.Observability.Metrics.IsEnabled(), "blank statsd address disables metrics")
	assert.Equal(t, "*/5 * * * *", cfg.Warmer.Schedule)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)
}

package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"storyapi"`
	Password string `env:"PASSWORD" envDefault:"storyapi"`
	Name     string `env:"NAME"     envDefault:"storyapi"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically
	// applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// CacheConfig contains story list cache configuration.
type CacheConfig struct {
	// Enabled turns the Redis-backed list cache on.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"true"`

	// ListTTL is the TTL for cached story list pages.
	ListTTL time.Duration `env:"CACHE_LIST_TTL" envDefault:"5m"`
}

package config

// StorageConfig contains media object storage configuration. It targets any
// S3-compatible store; set Endpoint and UsePathStyle for MinIO or R2.
type StorageConfig struct {
	Bucket string `env:"BUCKET,required"`
	Region string `env:"REGION" envDefault:"us-east-1"`

	// Endpoint overrides the AWS endpoint for S3-compatible stores.
	Endpoint string `env:"ENDPOINT"`

	// AccessKey and SecretKey are static credentials. Leave both empty to
	// use the default AWS credential chain.
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`

	// UsePathStyle forces path-style addressing (required by MinIO).
	UsePathStyle bool `env:"USE_PATH_STYLE" envDefault:"false"`
}

// WarmerConfig controls the background story list cache warmer.
type WarmerConfig struct {
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// Schedule is a cron spec; the first page of the published list is
	// re-warmed on this cadence.
	Schedule string `env:"SCHEDULE" envDefault:"*/5 * * * *"`
}

// Sanitize applies guardrails to warmer configuration values.
func (c *WarmerConfig) Sanitize() {
	if c.Schedule == "" {
		c.Schedule = "*/5 * * * *"
	}
}

package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: identity provider and token verification configuration
//   - database.go: Postgres and Redis configuration
//   - http.go: HTTP server configuration
//   - generation.go: job dispatch and poll configuration
type AppConfig struct {
	// IsDev controls development mode behavior (docs endpoints, relaxed logging).
	IsDev bool `env:"DEV" envDefault:"false"`

	// Auth holds identity provider configuration.
	Auth AuthConfig `envPrefix:"AUTH0_"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Generation holds async job dispatch/poll configuration.
	Generation GenerationConfig

	// Maintenance holds background sweep configuration.
	Maintenance MaintenanceConfig `envPrefix:"MAINTENANCE_"`

	// Metrics holds StatsD sink configuration.
	Metrics MetricsConfig `envPrefix:"STATSD_"`

	// AuthThrottle holds login rate limit configuration.
	AuthThrottle ThrottleConfig `envPrefix:"AUTH_THROTTLE_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Generation.Sanitize()
	c.Maintenance.Sanitize()
	c.Metrics.Sanitize()
	c.AuthThrottle.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and ENV environment variables.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		envName := strings.ToLower(os.Getenv("ENV"))
		c.IsDev = envName == "local" || envName == "dev" || envName == "development"
	}
}

package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthConfig contains identity provider and token verification configuration.
// All values use the AUTH0_ env prefix (see AppConfig).
type AuthConfig struct {
	// Domain is the identity provider tenant domain, e.g. "mealhow.eu.auth0.com".
	// Required unless DevMode is set.
	Domain string `env:"DOMAIN"`

	// Audience is the API audience expected in verified access tokens.
	// Required unless DevMode is set.
	Audience string `env:"API_DEFAULT_AUDIENCE"`

	// Algorithms is the accepted signing algorithm for access tokens.
	Algorithms string `env:"ALGORITHMS" envDefault:"RS256"`

	// KeyRefreshInterval bounds how long a fetched signing key set is reused
	// before it is re-fetched. Zero disables refresh and caches the set for
	// the process lifetime.
	KeyRefreshInterval time.Duration `env:"KEY_REFRESH_INTERVAL" envDefault:"15m"`

	// DefaultDBConnection is the identity provider database connection used
	// for signup.
	DefaultDBConnection string `env:"DEFAULT_DB_CONNECTION" envDefault:"Username-Password-Authentication"`

	// ClientID/ClientSecret identify the first-party application used for the
	// resource-owner login flow.
	ClientID     string `env:"APPLICATION_CLIENT_ID"`
	ClientSecret string `env:"APPLICATION_CLIENT_SECRET"`

	// Management API credentials, used for user management operations
	// (password updates) via a client-credentials token.
	ManagementClientID     string `env:"MANAGEMENT_API_CLIENT_ID"`
	ManagementClientSecret string `env:"MANAGEMENT_API_CLIENT_SECRET"`
	ManagementAudience     string `env:"MANAGEMENT_API_AUDIENCE"`

	// DevMode swaps the Auth0 stack for a local HMAC-signed token provider.
	// Never enable outside local development.
	DevMode bool `env:"DEV_MODE" envDefault:"false"`

	// DevSecret signs dev-mode tokens. Only read when DevMode is set.
	DevSecret string `env:"DEV_SECRET" envDefault:"mealhow-dev-secret"`

	// DevTokenTTL bounds the lifetime of dev-mode tokens.
	DevTokenTTL time.Duration `env:"DEV_TOKEN_TTL" envDefault:"8h"`
}

// IssuerURL returns the expected token issuer for the configured domain.
func (a AuthConfig) IssuerURL() string {
	return fmt.Sprintf("https://%s/", a.Domain)
}

// JWKSURL returns the published signing key set endpoint for the configured domain.
func (a AuthConfig) JWKSURL() string {
	return fmt.Sprintf("https://%s/.well-known/jwks.json", a.Domain)
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.Domain = strings.TrimSuffix(strings.TrimSpace(a.Domain), "/")
	if a.Algorithms == "" {
		a.Algorithms = "RS256"
	}
	if a.KeyRefreshInterval < 0 {
		a.KeyRefreshInterval = 0
	}
	if a.DevTokenTTL <= 0 {
		a.DevTokenTTL = 8 * time.Hour
	}
}

package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// APIPrefix is the versioned prefix all business routes live under.
	APIPrefix string `env:"API_V1_PREFIX" envDefault:"/v1"`

	// WhitelistedPaths are exact request paths that bypass the authorization
	// gate entirely (health checks, docs).
	WhitelistedPaths []string `env:"WHITELISTED_PATHS" envSeparator:"," envDefault:"/status,/healthz,/docs,/openapi.json"`

	// ClientOriginURLs is the comma-separated list of allowed CORS origins.
	ClientOriginURLs []string `env:"CLIENT_ORIGIN_URLS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// PublicAuthPrefix returns the path prefix of the public auth endpoints, which
// bypass the authorization gate like the whitelisted paths do.
func (h HTTPConfig) PublicAuthPrefix() string {
	return h.APIPrefix + "/auth"
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.APIPrefix = "/" + strings.Trim(h.APIPrefix, "/")
	if h.APIPrefix == "/" {
		h.APIPrefix = "/v1"
	}
	out := h.WhitelistedPaths[:0]
	for _, p := range h.WhitelistedPaths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, p)
	}
	h.WhitelistedPaths = out
}

package config

import "strings"

// MetricsConfig configures the optional StatsD metrics sink.
type MetricsConfig struct {
	// Enabled toggles metric emission. Metrics also stay off when Address is
	// empty.
	Enabled bool `env:"ENABLED" envDefault:"false"`

	// Address is the host:port of a StatsD-compatible UDP endpoint.
	Address string `env:"ADDRESS"`

	// Prefix is prepended to every metric name.
	Prefix string `env:"PREFIX" envDefault:"mealhow.api"`
}

// Sanitize applies guardrails to metrics configuration values.
func (m *MetricsConfig) Sanitize() {
	m.Address = strings.TrimSpace(m.Address)
	if m.Address == "" {
		m.Enabled = false
	}
}

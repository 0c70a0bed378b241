package config

import "time"

// ThrottleConfig bounds how often a client may hit the public auth endpoints.
// The counters live in Redis so the limit holds across instances.
type ThrottleConfig struct {
	// Enabled toggles the throttle. Disabled skips Redis entirely.
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// Limit is the number of requests allowed per window per client.
	Limit int `env:"LIMIT" envDefault:"10"`

	// Window is the fixed counting window.
	Window time.Duration `env:"WINDOW" envDefault:"1m"`
}

// Sanitize applies guardrails to throttle configuration values.
func (t *ThrottleConfig) Sanitize() {
	if t.Limit <= 0 {
		t.Limit = 10
	}
	if t.Window <= 0 {
		t.Window = time.Minute
	}
}

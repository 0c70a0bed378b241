package config

import "time"

// MaintenanceConfig controls the background sweep that keeps the job tables
// healthy: generation records stuck in_progress are failed after a deadline
// (a dead worker must not block the single-pending-job rule forever), and
// soft-deleted shopping lists are eventually purged.
type MaintenanceConfig struct {
	// Enabled toggles the maintenance loop.
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// Interval is the delay between sweeps.
	Interval time.Duration `env:"INTERVAL" envDefault:"5m"`

	// StaleAfter is how long a record may sit in_progress before the sweep
	// marks it failed. Must comfortably exceed the worker's own budget.
	StaleAfter time.Duration `env:"STALE_AFTER" envDefault:"30m"`

	// PurgeDeletedAfter is how long soft-deleted shopping lists are retained
	// before the sweep removes them for good.
	PurgeDeletedAfter time.Duration `env:"PURGE_DELETED_AFTER" envDefault:"720h"`
}

// Sanitize applies guardrails to maintenance configuration values.
func (m *MaintenanceConfig) Sanitize() {
	if m.Interval <= 0 {
		m.Interval = 5 * time.Minute
	}
	if m.StaleAfter <= 0 {
		m.StaleAfter = 30 * time.Minute
	}
	if m.PurgeDeletedAfter <= 0 {
		m.PurgeDeletedAfter = 720 * time.Hour
	}
}

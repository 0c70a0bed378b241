package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mealhow/mealhow-api/config"
	"github.com/mealhow/mealhow-api/internal/core"
	"github.com/mealhow/mealhow-api/internal/observability/statsd"
)

// MaintenanceServiceOptions groups dependencies for MaintenanceService.
type MaintenanceServiceOptions struct {
	Repo    core.MaintenanceRepository // Required: cleanup queries
	Config  config.MaintenanceConfig   // Required: sweep configuration
	Logger  *slog.Logger               // Optional: structured logger
	Metrics statsd.Sink                // Optional: metrics sink (StatsD-compatible)
}

// MaintenanceService keeps the job tables healthy in the background.
//
// The sweep covers:
// - Failing meal plans and shopping lists stuck in_progress. A dead worker
//   must not block the single-pending-job rule indefinitely.
// - Purging shopping lists soft-deleted past the retention window.
type MaintenanceService struct {
	repo    core.MaintenanceRepository
	config  config.MaintenanceConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewMaintenanceService constructs a new MaintenanceService.
func NewMaintenanceService(opts MaintenanceServiceOptions) (*MaintenanceService, error) {
	if opts.Repo == nil {
		return nil, errors.New("MaintenanceRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "maintenance_service")
	}

	return &MaintenanceService{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *MaintenanceService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting maintenance service",
			"interval", s.config.Interval,
			"stale_after", s.config.StaleAfter,
			"purge_deleted_after", s.config.PurgeDeletedAfter,
		)
	}

	// Jitter so multiple instances started together do not sweep in lockstep.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "maintenance service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Sweep runs every cleanup step once. Exposed so operators can trigger a
// sweep outside the loop (and so tests do not need a ticker).
func (s *MaintenanceService) Sweep(ctx context.Context) error {
	return s.sweep(ctx)
}

type sweepStep struct {
	name string
	fn   func(context.Context) (int64, error)
}

func (s *MaintenanceService) sweep(ctx context.Context) error {
	start := time.Now()
	steps := []sweepStep{
		{"fail_stale_meal_plans", func(ctx context.Context) (int64, error) {
			return s.repo.FailStaleMealPlans(ctx, s.config.StaleAfter)
		}},
		{"fail_stale_shopping_lists", func(ctx context.Context) (int64, error) {
			return s.repo.FailStaleShoppingLists(ctx, s.config.StaleAfter)
		}},
		{"purge_deleted_shopping_lists", func(ctx context.Context) (int64, error) {
			return s.repo.PurgeDeletedShoppingLists(ctx, s.config.PurgeDeletedAfter)
		}},
	}

	var errs []error
	for _, step := range steps {
		count, err := step.fn(ctx)
		result := "success"
		if err != nil {
			result = "error"
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			if s.logger != nil && !errors.Is(err, context.Canceled) {
				s.logger.ErrorContext(ctx, "maintenance step failed",
					"step", step.name, "error", err)
			}
		} else if count > 0 && s.logger != nil {
			s.logger.InfoContext(ctx, "maintenance step swept rows",
				"step", step.name, "rows", count)
		}
		if s.metrics != nil {
			s.metrics.Count("maintenance.swept", count,
				map[string]string{"step": step.name, "result": result})
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if s.metrics != nil {
		s.metrics.Timing("maintenance.sweep_duration", time.Since(start), nil)
	}
	return errors.Join(errs...)
}

// waitWithJitter delays up to 10% of the interval before the first sweep.
func (s *MaintenanceService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)))

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

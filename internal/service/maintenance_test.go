package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mealhow/mealhow-api/config"
	"github.com/mealhow/mealhow-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMaintenanceConfig() config.MaintenanceConfig {
	return config.MaintenanceConfig{
		Enabled:           true,
		Interval:          time.Minute,
		StaleAfter:        30 * time.Minute,
		PurgeDeletedAfter: 720 * time.Hour,
	}
}

func TestMaintenanceService_Sweep(t *testing.T) {
	t.Run("runs every step with the configured windows", func(t *testing.T) {
		var staleAges []time.Duration
		var retention time.Duration
		repo := &mocks.MaintenanceRepoDouble{
			FailStaleMealPlansFunc: func(_ context.Context, maxAge time.Duration) (int64, error) {
				staleAges = append(staleAges, maxAge)
				return 2, nil
			},
			FailStaleShoppingListsFunc: func(_ context.Context, maxAge time.Duration) (int64, error) {
				staleAges = append(staleAges, maxAge)
				return 0, nil
			},
			PurgeDeletedShoppingListsFunc: func(_ context.Context, r time.Duration) (int64, error) {
				retention = r
				return 1, nil
			},
		}

		svc, err := NewMaintenanceService(MaintenanceServiceOptions{
			Repo:   repo,
			Config: testMaintenanceConfig(),
		})
		require.NoError(t, err)

		require.NoError(t, svc.Sweep(context.Background()))
		assert.Equal(t, []time.Duration{30 * time.Minute, 30 * time.Minute}, staleAges)
		assert.Equal(t, 720*time.Hour, retention)
	})

	t.Run("a failing step does not stop the rest", func(t *testing.T) {
		boom := errors.New("boom")
		purged := false
		repo := &mocks.MaintenanceRepoDouble{
			FailStaleMealPlansFunc: func(context.Context, time.Duration) (int64, error) {
				return 0, boom
			},
			FailStaleShoppingListsFunc: func(context.Context, time.Duration) (int64, error) {
				return 0, nil
			},
			PurgeDeletedShoppingListsFunc: func(context.Context, time.Duration) (int64, error) {
				purged = true
				return 0, nil
			},
		}

		svc, err := NewMaintenanceService(MaintenanceServiceOptions{
			Repo:   repo,
			Config: testMaintenanceConfig(),
		})
		require.NoError(t, err)

		err = svc.Sweep(context.Background())
		require.ErrorIs(t, err, boom)
		assert.True(t, purged, "later steps must still run")
	})

	t.Run("run stops cleanly on cancellation", func(t *testing.T) {
		repo := &mocks.MaintenanceRepoDouble{
			FailStaleMealPlansFunc: func(context.Context, time.Duration) (int64, error) {
				return 0, nil
			},
			FailStaleShoppingListsFunc: func(context.Context, time.Duration) (int64, error) {
				return 0, nil
			},
			PurgeDeletedShoppingListsFunc: func(context.Context, time.Duration) (int64, error) {
				return 0, nil
			},
		}

		cfg := testMaintenanceConfig()
		cfg.Interval = 5 * time.Millisecond
		svc, err := NewMaintenanceService(MaintenanceServiceOptions{Repo: repo, Config: cfg})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Run(ctx) }()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case runErr := <-done:
			require.NoError(t, runErr, "cancellation is a graceful shutdown")
		case <-time.After(time.Second):
			t.Fatal("maintenance loop did not stop")
		}
	})

	t.Run("constructor requires a repository", func(t *testing.T) {
		_, err := NewMaintenanceService(MaintenanceServiceOptions{Config: testMaintenanceConfig()})
		require.Error(t, err)
	})
}

package data

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mealhow/mealhow-api/internal/data/pgxutil"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
)

// MaintenanceRepo provides the cleanup queries run by the background sweep.
// It writes across the job tables, so it deliberately has no owner scoping.
type MaintenanceRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewMaintenanceRepo creates a new MaintenanceRepo with real time provider.
func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo {
	return &MaintenanceRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewMaintenanceRepoWithTimeProvider creates a MaintenanceRepo with a custom
// time provider for testing.
func NewMaintenanceRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *MaintenanceRepo {
	return &MaintenanceRepo{DB: db, timeProvider: tp}
}

// FailStaleMealPlans marks meal plans stuck in_progress longer than maxAge as
// failed. A worker that died mid-job must not hold the single-pending-job rule
// forever.
func (r *MaintenanceRepo) FailStaleMealPlans(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := r.timeProvider.Now().UTC().Add(-maxAge)
	return r.exec(ctx, `
		UPDATE meal_plans SET status = 'failed'
		WHERE status = 'in_progress' AND created_at < $1`, cutoff)
}

// FailStaleShoppingLists marks shopping lists stuck in_progress longer than
// maxAge as failed.
func (r *MaintenanceRepo) FailStaleShoppingLists(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := r.timeProvider.Now().UTC().Add(-maxAge)
	return r.exec(ctx, `
		UPDATE shopping_lists SET status = 'failed'
		WHERE status = 'in_progress' AND created_at < $1 AND deleted_at IS NULL`, cutoff)
}

// PurgeDeletedShoppingLists removes lists soft-deleted longer than retention
// ago. Items and meal links go with them via cascading deletes.
func (r *MaintenanceRepo) PurgeDeletedShoppingLists(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := r.timeProvider.Now().UTC().Add(-retention)
	return r.exec(ctx, `
		DELETE FROM shopping_lists
		WHERE deleted_at IS NOT NULL AND deleted_at < $1`, cutoff)
}

func (r *MaintenanceRepo) exec(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return affected, nil
}

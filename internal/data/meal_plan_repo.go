package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mealhow/mealhow-api/internal/data/pgxutil"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
)

const mealPlanColumns = `id, user_id, status, details, created_at`

// MealPlanRepo provides database operations for meal plans. Plans are created
// and advanced by the generation worker; the API reads them by owner and
// status and archives superseded ones.
type MealPlanRepo struct {
	DB *sql.DB
}

// NewMealPlanRepo creates a new MealPlanRepo.
func NewMealPlanRepo(db *sql.DB) *MealPlanRepo {
	return &MealPlanRepo{DB: db}
}

// FindByOwnerAndStatus returns the newest plan for the owner in the given
// status, or nil when none exists.
func (r *MealPlanRepo) FindByOwnerAndStatus(
	ctx context.Context,
	userID string,
	status model.JobStatus,
) (*model.MealPlan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM meal_plans
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`, mealPlanColumns)
	return r.queryOne(ctx, query, userID, string(status))
}

// FindResolved returns the owner's newest plan once its status has left
// in_progress, or nil while the newest plan is still pending.
func (r *MealPlanRepo) FindResolved(ctx context.Context, userID string) (*model.MealPlan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM meal_plans
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, mealPlanColumns)
	plan, err := r.queryOne(ctx, query, userID)
	if err != nil || plan == nil {
		return nil, err
	}
	if !plan.Status.Resolved() {
		return nil, nil
	}
	return plan, nil
}

// Current returns the owner's active plan, or nil when none exists.
func (r *MealPlanRepo) Current(ctx context.Context, userID string) (*model.MealPlan, error) {
	return r.FindByOwnerAndStatus(ctx, userID, model.JobStatusActive)
}

// ListArchived returns the owner's archived plans, newest first.
func (r *MealPlanRepo) ListArchived(ctx context.Context, userID string) ([]*model.MealPlan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM meal_plans
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC`, mealPlanColumns)

	var out []*model.MealPlan
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, query, userID, string(model.JobStatusArchived))
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		plans, collectErr := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.MealPlan])
		if collectErr != nil {
			return collectErr
		}
		out = plans
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Archive moves the owner's plan to archived status.
func (r *MealPlanRepo) Archive(ctx context.Context, userID, planID string) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx, `
			UPDATE meal_plans SET status = $1
			WHERE id = $2 AND user_id = $3`,
			string(model.JobStatusArchived), planID, userID)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("Meal plan not found")
		}
		return nil
	})
	return apperrors.MapDBError(err)
}

func (r *MealPlanRepo) queryOne(ctx context.Context, query string, args ...any) (*model.MealPlan, error) {
	var out *model.MealPlan
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, query, args...)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		plan, collectErr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.MealPlan])
		if collectErr != nil {
			return collectErr
		}
		out = &plan
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mealhow/mealhow-api/internal/data/pgxutil"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
)

const mealColumns = `id, full_name, calories, protein, carbs, fats,
	preparation_time, recipe, image_url, created_at`

// MealRepo provides database operations for meals and favorites. Meals are
// written by the generation workers; the API only reads them and maintains
// each user's favorites.
type MealRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewMealRepo creates a new MealRepo with real time provider.
func NewMealRepo(db *sql.DB) *MealRepo {
	return &MealRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewMealRepoWithTimeProvider creates a MealRepo with a custom time provider
// (useful for tests).
func NewMealRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *MealRepo {
	return &MealRepo{DB: db, timeProvider: tp}
}

// GetByID returns the meal or a NotFound error.
func (r *MealRepo) GetByID(ctx context.Context, id string) (*model.Meal, error) {
	var meal *model.Meal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx,
			fmt.Sprintf(`SELECT %s FROM meals WHERE id = $1`, mealColumns), id)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		found, collectErr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Meal])
		if collectErr != nil {
			return collectErr
		}
		meal = &found
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Meal not found")
		}
		return nil, apperrors.MapDBError(err)
	}
	return meal, nil
}

// GetByIDs returns the meals matching the given ids. Missing ids are simply
// absent from the result; callers that need all ids present must check the
// length themselves.
func (r *MealRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.Meal, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var meals []*model.Meal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx,
			fmt.Sprintf(`SELECT %s FROM meals WHERE id = ANY($1) ORDER BY created_at DESC`, mealColumns), ids)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		collected, collectErr := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Meal])
		if collectErr != nil {
			return collectErr
		}
		meals = collected
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return meals, nil
}

// ListFavorites returns the user's favorited meals, most recently favorited
// first.
func (r *MealRepo) ListFavorites(ctx context.Context, userID string) ([]*model.Meal, error) {
	var meals []*model.Meal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, `
			SELECT m.id, m.full_name, m.calories, m.protein, m.carbs, m.fats,
				m.preparation_time, m.recipe, m.image_url, m.created_at
			FROM meals m
			JOIN favorite_meals f ON f.meal_id = m.id
			WHERE f.user_id = $1 AND f.deleted_at IS NULL
			ORDER BY f.created_at DESC`, userID)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		collected, collectErr := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Meal])
		if collectErr != nil {
			return collectErr
		}
		meals = collected
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return meals, nil
}

// SaveFavorite marks a meal as favorite. Re-favoriting a soft-deleted row
// restores it instead of inserting a duplicate.
func (r *MealRepo) SaveFavorite(ctx context.Context, userID, mealID string) error {
	if _, err := r.GetByID(ctx, mealID); err != nil {
		return err
	}
	now := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx, `
			UPDATE favorite_meals SET deleted_at = NULL
			WHERE user_id = $1 AND meal_id = $2 AND deleted_at IS NOT NULL`,
			userID, mealID)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		_, execErr = conn.Exec(ctx, `
			INSERT INTO favorite_meals (id, user_id, meal_id, created_at)
			VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), userID, mealID, now)
		return execErr
	})
	return apperrors.MapDBError(err)
}

// UnmarkFavorite soft-deletes the favorite link. Unmarking a meal that was
// never favorited is a NotFound error.
func (r *MealRepo) UnmarkFavorite(ctx context.Context, userID, mealID string) error {
	deletedAt := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx, `
			UPDATE favorite_meals SET deleted_at = $1
			WHERE user_id = $2 AND meal_id = $3 AND deleted_at IS NULL`,
			deletedAt, userID, mealID)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("Favorite meal not found")
		}
		return nil
	})
	return apperrors.MapDBError(err)
}

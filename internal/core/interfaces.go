package core

import (
	"context"
	"time"

	"github.com/mealhow/mealhow-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// MealPlanRepository defines the interface for meal plan data operations.
// The record store is owner-scoped: every query is keyed by user id.
type MealPlanRepository interface {
	// FindByOwnerAndStatus returns the newest plan for the owner in the given
	// status, or nil when none exists.
	FindByOwnerAndStatus(ctx context.Context, userID string, status model.JobStatus) (*model.MealPlan, error)
	// FindResolved returns the owner's newest plan once its status has left
	// in_progress, or nil while the newest plan is still pending.
	FindResolved(ctx context.Context, userID string) (*model.MealPlan, error)
	Current(ctx context.Context, userID string) (*model.MealPlan, error)
	ListArchived(ctx context.Context, userID string) ([]*model.MealPlan, error)
	Archive(ctx context.Context, userID, planID string) error
}

// ShoppingListRepository defines the interface for shopping list data operations.
type ShoppingListRepository interface {
	FindByOwnerAndStatus(ctx context.Context, userID string, status model.JobStatus) (*model.ShoppingList, error)
	// FindResolvedByName returns the list created for the named generation
	// request once its status has left in_progress, or nil when still pending.
	FindResolvedByName(ctx context.Context, userID, name string) (*model.ShoppingList, error)
	List(ctx context.Context, userID string) ([]*model.ShoppingList, error)
	GetByID(ctx context.Context, userID, listID string) (*model.ShoppingList, error)
	SoftDelete(ctx context.Context, userID, listID string) error
	LinkedMealIDs(ctx context.Context, userID, listID string) ([]string, error)
}

// UserRepository defines the interface for user profile data operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, info model.PersonalInfo) (*model.User, error)
	// UpdateCaloriesGoal persists a freshly computed calorie target so the
	// generation worker reads consistent state. Called before dispatch.
	UpdateCaloriesGoal(ctx context.Context, id string, bmr, caloriesGoal int) error
}

// MealRepository defines the interface for meal and favorites data operations.
type MealRepository interface {
	GetByID(ctx context.Context, id string) (*model.Meal, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Meal, error)
	ListFavorites(ctx context.Context, userID string) ([]*model.Meal, error)
	SaveFavorite(ctx context.Context, userID, mealID string) error
	UnmarkFavorite(ctx context.Context, userID, mealID string) error
}

// Publisher is the fire-and-forget publish sink for dispatch events. A nil
// error only means the sink accepted the message.
type Publisher interface {
	Publish(ctx context.Context, event model.DispatchEvent) error
}

// MaintenanceRepository defines the cleanup operations run by the background
// maintenance sweep. Each method returns the number of rows affected.
type MaintenanceRepository interface {
	// FailStaleMealPlans marks meal plans stuck in_progress longer than
	// maxAge as failed.
	FailStaleMealPlans(ctx context.Context, maxAge time.Duration) (int64, error)
	// FailStaleShoppingLists marks shopping lists stuck in_progress longer
	// than maxAge as failed.
	FailStaleShoppingLists(ctx context.Context, maxAge time.Duration) (int64, error)
	// PurgeDeletedShoppingLists removes lists soft-deleted longer than
	// retention ago, along with their items and meal links.
	PurgeDeletedShoppingLists(ctx context.Context, retention time.Duration) (int64, error)
}

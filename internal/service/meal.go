package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mealhow/mealhow-api/internal/core"
	"github.com/mealhow/mealhow-api/internal/domain/model"
)

// MealServiceOptions groups dependencies for MealService.
type MealServiceOptions struct {
	Repo   core.MealRepository // Required: meal store
	Logger *slog.Logger        // Optional: structured logger
}

// MealService provides read access to worker-generated meals and manages the
// user's favorites.
type MealService struct {
	repo   core.MealRepository
	logger *slog.Logger
}

// NewMealService constructs a new MealService.
func NewMealService(opts MealServiceOptions) (*MealService, error) {
	if opts.Repo == nil {
		return nil, errors.New("MealRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "meal_service")
	}

	return &MealService{repo: opts.Repo, logger: logger}, nil
}

// Get returns one meal by id.
func (s *MealService) Get(ctx context.Context, mealID string) (*model.Meal, error) {
	return s.repo.GetByID(ctx, mealID)
}

// ListFavorites returns the user's favorited meals.
func (s *MealService) ListFavorites(ctx context.Context, userID string) ([]*model.Meal, error) {
	return s.repo.ListFavorites(ctx, userID)
}

// SaveFavorite marks a meal as one of the user's favorites.
func (s *MealService) SaveFavorite(ctx context.Context, userID, mealID string) error {
	return s.repo.SaveFavorite(ctx, userID, mealID)
}

// UnmarkFavorite removes a meal from the user's favorites.
func (s *MealService) UnmarkFavorite(ctx context.Context, userID, mealID string) error {
	return s.repo.UnmarkFavorite(ctx, userID, mealID)
}

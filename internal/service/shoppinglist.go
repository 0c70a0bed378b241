package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mealhow/mealhow-api/internal/core"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
)

// ShoppingListServiceOptions groups dependencies for ShoppingListService.
type ShoppingListServiceOptions struct {
	Repo              core.ShoppingListRepository // Required: shopping list store
	Meals             core.MealRepository         // Required: meal lookups for input validation
	Generation        *GenerationService          // Required: dispatch/poll bridge
	ShoppingListTopic string                      // Required: short topic id for list jobs
	Logger            *slog.Logger                // Optional: structured logger
}

// ShoppingListService provides business logic for shopping list generation
// and lifecycle operations.
type ShoppingListService struct {
	repo   core.ShoppingListRepository
	meals  core.MealRepository
	gen    *GenerationService
	topic  string
	logger *slog.Logger
}

// NewShoppingListService constructs a new ShoppingListService.
func NewShoppingListService(opts ShoppingListServiceOptions) (*ShoppingListService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ShoppingListRepository is required")
	}
	if opts.Meals == nil {
		return nil, errors.New("MealRepository is required")
	}
	if opts.Generation == nil {
		return nil, errors.New("GenerationService is required")
	}
	if opts.ShoppingListTopic == "" {
		return nil, errors.New("ShoppingListTopic is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "shopping_list_service")
	}

	return &ShoppingListService{
		repo:   opts.Repo,
		meals:  opts.Meals,
		gen:    opts.Generation,
		topic:  opts.ShoppingListTopic,
		logger: logger,
	}, nil
}

// Generate dispatches a shopping list job built from the given meals and
// waits for the worker to resolve it. All referenced meals must exist.
func (s *ShoppingListService) Generate(ctx context.Context, userID string, req model.ShoppingListRequest) (*model.ShoppingList, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, apperrors.ValidationField("name", "Name is required")
	}
	if len(req.MealIDs) == 0 {
		return nil, apperrors.ValidationField("meal_ids", "At least one meal is required")
	}

	meals, err := s.meals.GetByIDs(ctx, req.MealIDs)
	if err != nil {
		return nil, err
	}
	if len(meals) != len(uniqueStrings(req.MealIDs)) {
		return nil, apperrors.ValidationField("meal_ids", "One or more meals do not exist")
	}

	job := model.ShoppingListJob{
		UserID:  userID,
		Name:    req.Name,
		MealIDs: req.MealIDs,
	}

	var result *model.ShoppingList
	err = s.gen.CreateAndAwait(ctx, GenerationRequest{
		TopicID: s.topic,
		Payload: &job,
		CheckConflict: func(ctx context.Context) (bool, error) {
			pending, findErr := s.repo.FindByOwnerAndStatus(ctx, userID, model.JobStatusInProgress)
			if findErr != nil {
				return false, findErr
			}
			return pending != nil, nil
		},
		Poll: func(ctx context.Context) (bool, error) {
			list, pollErr := s.repo.FindResolvedByName(ctx, userID, req.Name)
			if pollErr != nil {
				return false, pollErr
			}
			if list == nil {
				return false, nil
			}
			result = list
			return true, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "shopping list resolved",
			"shopping_list_id", result.ID,
			"status", result.Status,
		)
	}
	return result, nil
}

// List returns the user's shopping lists, newest first.
func (s *ShoppingListService) List(ctx context.Context, userID string) ([]*model.ShoppingList, error) {
	return s.repo.List(ctx, userID)
}

// Get returns one list with its items.
func (s *ShoppingListService) Get(ctx context.Context, userID, listID string) (*model.ShoppingList, error) {
	return s.repo.GetByID(ctx, userID, listID)
}

// Delete soft-deletes a list.
func (s *ShoppingListService) Delete(ctx context.Context, userID, listID string) error {
	return s.repo.SoftDelete(ctx, userID, listID)
}

// LinkedMeals returns the meals the list was generated from.
func (s *ShoppingListService) LinkedMeals(ctx context.Context, userID, listID string) ([]*model.Meal, error) {
	ids, err := s.repo.LinkedMealIDs(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.meals.GetByIDs(ctx, ids)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/mealhow/mealhow-api/internal/core"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	"github.com/mealhow/mealhow-api/internal/domain/nutrition"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
)

// MealPlanServiceOptions groups dependencies for MealPlanService.
type MealPlanServiceOptions struct {
	Repo          core.MealPlanRepository // Required: meal plan store
	Users         core.UserRepository     // Required: owner profiles
	Generation    *GenerationService      // Required: dispatch/poll bridge
	MealPlanTopic string                  // Required: short topic id for plan jobs
	Logger        *slog.Logger            // Optional: structured logger
}

// MealPlanService provides business logic for meal plan generation and
// lifecycle operations. A user has at most one pending plan at a time; the
// conflict check runs before every dispatch.
type MealPlanService struct {
	repo   core.MealPlanRepository
	users  core.UserRepository
	gen    *GenerationService
	topic  string
	logger *slog.Logger
}

// NewMealPlanService constructs a new MealPlanService.
func NewMealPlanService(opts MealPlanServiceOptions) (*MealPlanService, error) {
	if opts.Repo == nil {
		return nil, errors.New("MealPlanRepository is required")
	}
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}
	if opts.Generation == nil {
		return nil, errors.New("GenerationService is required")
	}
	if opts.MealPlanTopic == "" {
		return nil, errors.New("MealPlanTopic is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "meal_plan_service")
	}

	return &MealPlanService{
		repo:   opts.Repo,
		users:  opts.Users,
		gen:    opts.Generation,
		topic:  opts.MealPlanTopic,
		logger: logger,
	}, nil
}

// Generate dispatches a meal plan job for the user and waits for the worker
// to resolve it. The owner's calorie target is recomputed and persisted just
// before dispatch so the worker never plans against stale numbers.
func (s *MealPlanService) Generate(ctx context.Context, userID string, req model.MealPlanRequest) (*model.MealPlan, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	job := model.MealPlanJob{
		UserID:       userID,
		DurationDays: req.DurationDays,
		AvoidFoods:   req.AvoidFoods,
	}
	if len(job.AvoidFoods) == 0 {
		job.AvoidFoods = user.AvoidFoods
	}

	var result *model.MealPlan
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
		BeforeDispatch: func(ctx context.Context) error {
			bmr, caloriesGoal := recomputeCaloriesGoal(user)
			job.CaloriesGoal = caloriesGoal
			return s.users.UpdateCaloriesGoal(ctx, userID, bmr, caloriesGoal)
		},
		Poll: func(ctx context.Context) (bool, error) {
			plan, pollErr := s.repo.FindResolved(ctx, userID)
			if pollErr != nil {
				return false, pollErr
			}
			if plan == nil {
				return false, nil
			}
			result = plan
			return true, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "meal plan resolved",
			"meal_plan_id", result.ID,
			"status", result.Status,
		)
	}
	return result, nil
}

// Current returns the user's active plan, or a NotFound error when the user
// has never generated one.
func (s *MealPlanService) Current(ctx context.Context, userID string) (*model.MealPlan, error) {
	plan, err := s.repo.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NotFound("No active meal plan")
	}
	return plan, nil
}

// ListArchived returns the user's archived plans, newest first.
func (s *MealPlanService) ListArchived(ctx context.Context, userID string) ([]*model.MealPlan, error) {
	return s.repo.ListArchived(ctx, userID)
}

// Archive moves the user's plan into the archived state.
func (s *MealPlanService) Archive(ctx context.Context, userID, planID string) error {
	return s.repo.Archive(ctx, userID, planID)
}

// FilterDetails applies a JMESPath expression to the plan's details document
// and returns the projected result. An invalid expression is a validation
// error, not a server fault.
func (s *MealPlanService) FilterDetails(plan *model.MealPlan, expression string) (any, error) {
	compiled, err := jmespath.Compile(expression)
	if err != nil {
		return nil, apperrors.ValidationField("filter", fmt.Sprintf("Invalid filter expression: %v", err))
	}

	var details any
	if len(plan.Details) > 0 {
		if err := json.Unmarshal(plan.Details, &details); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode plan details")
		}
	}

	result, err := compiled.Search(details)
	if err != nil {
		return nil, apperrors.ValidationField("filter", fmt.Sprintf("Filter evaluation failed: %v", err))
	}
	return result, nil
}

// recomputeCaloriesGoal runs the nutrition pipeline against the profile's
// latest current-weight record. Profiles without a weight record keep their
// stored values.
func recomputeCaloriesGoal(user *model.User) (bmr, caloriesGoal int) {
	if len(user.CurrentWeight) == 0 || user.HeightCm <= 0 {
		return user.BMR, user.CaloriesGoal
	}
	weightKg := user.CurrentWeight[0].WeightKg
	age := user.Age(time.Now().UTC())
	bmr = nutrition.BasalMetabolicRate(weightKg, user.HeightCm, age, user.BiologicalSex)
	caloriesGoal = nutrition.RoundCaloriesGoal(
		nutrition.CaloriesGoalByGoalType(
			nutrition.CaloriesGoalByActivityLevel(bmr, user.ActivityLevel),
			user.Goal,
		),
	)
	return bmr, caloriesGoal
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mealhow/mealhow-api/internal/core"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	"github.com/mealhow/mealhow-api/internal/domain/nutrition"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Repo   core.UserRepository // Required: profile store
	Logger *slog.Logger        // Optional: structured logger
}

// UserService provides business logic for user profile operations. Profile
// writes always run the nutrition pipeline so the stored BMR and calorie
// target stay consistent with the latest measurements.
type UserService struct {
	repo   core.UserRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) (*UserService, error) {
	if opts.Repo == nil {
		return nil, errors.New("UserRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "user_service")
	}

	return &UserService{
		repo:   opts.Repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateProfileInput carries everything needed to create a profile. The ID
// must be the verified token subject.
type CreateProfileInput struct {
	ID    string
	Email string
	Name  string
	Info  model.PersonalInfo
}

// CreateProfile stores a new profile built from the onboarding questionnaire.
func (s *UserService) CreateProfile(ctx context.Context, in CreateProfileInput) (*model.User, error) {
	if err := validatePersonalInfo(in.Info); err != nil {
		return nil, err
	}

	now := s.now()
	heightCm := in.Info.Height
	if in.Info.MeasurementSystem == model.MeasurementImperial {
		heightCm = nutrition.HeightToMetric(in.Info.Height)
	}
	currentKg := in.Info.CurrentWeight
	goalKg := in.Info.WeightGoal
	if in.Info.MeasurementSystem == model.MeasurementImperial {
		currentKg = nutrition.WeightToMetric(in.Info.CurrentWeight)
		goalKg = nutrition.WeightToMetric(in.Info.WeightGoal)
	}

	bmr := nutrition.BasalMetabolicRate(currentKg, heightCm, in.Info.Age, in.Info.BiologicalSex)
	caloriesGoal := nutrition.RoundCaloriesGoal(
		nutrition.CaloriesGoalByGoalType(
			nutrition.CaloriesGoalByActivityLevel(bmr, in.Info.ActivityLevel),
			in.Info.Goal,
		),
	)

	user := &model.User{
		ID:                in.ID,
		Email:             in.Email,
		Name:              in.Name,
		Goal:              in.Info.Goal,
		BiologicalSex:     in.Info.BiologicalSex,
		BirthDate:         now.AddDate(-in.Info.Age, 0, 0),
		ActivityLevel:     in.Info.ActivityLevel,
		MeasurementSystem: in.Info.MeasurementSystem,
		MealPrepTime:      in.Info.MealPrepTime,
		ProteinGoal:       in.Info.ProteinGoal,
		AvoidFoods:        in.Info.AvoidFoods,
		PreferredCuisines: in.Info.PreferredCuisines,
		HealthConditions:  in.Info.HealthConditions,
		HeightCm:          heightCm,
		HeightInches:      nutrition.HeightToImperial(heightCm),
		BMR:               bmr,
		CaloriesGoal:      caloriesGoal,
		CreatedAt:         now,
		CurrentWeight: []model.WeightRecord{{
			WeightKg:   currentKg,
			WeightLbs:  nutrition.WeightToImperial(currentKg),
			BMI:        nutrition.BMI(currentKg, heightCm),
			RecordedAt: now,
		}},
		WeightGoal: []model.WeightRecord{{
			WeightKg:   goalKg,
			WeightLbs:  nutrition.WeightToImperial(goalKg),
			BMI:        nutrition.BMI(goalKg, heightCm),
			RecordedAt: now,
		}},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "profile created",
			"user_id", user.ID,
			"bmr", bmr,
			"calories_goal", caloriesGoal,
		)
	}
	return user, nil
}

// Get returns the user's profile.
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile applies the editable profile subset then recomputes and
// persists the calorie target from the updated measurements.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, info model.PersonalInfo) (*model.User, error) {
	if err := validatePersonalInfo(info); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateProfile(ctx, userID, info)
	if err != nil {
		return nil, err
	}

	bmr, caloriesGoal := recomputeCaloriesGoal(user)
	if err := s.repo.UpdateCaloriesGoal(ctx, userID, bmr, caloriesGoal); err != nil {
		return nil, err
	}
	user.BMR = bmr
	user.CaloriesGoal = caloriesGoal
	return user, nil
}

func validatePersonalInfo(info model.PersonalInfo) error {
	switch {
	case info.Age <= 0:
		return apperrors.ValidationField("age", "Age must be positive")
	case info.Height <= 0:
		return apperrors.ValidationField("height", "Height must be positive")
	case info.CurrentWeight <= 0:
		return apperrors.ValidationField("current_weight", "Current weight must be positive")
	case info.BiologicalSex != "male" && info.BiologicalSex != "female":
		return apperrors.ValidationField("biological_sex", "Biological sex must be male or female")
	case info.MeasurementSystem != model.MeasurementMetric && info.MeasurementSystem != model.MeasurementImperial:
		return apperrors.ValidationField("measurement_system", "Measurement system must be metric or imperial")
	}
	return nil
}

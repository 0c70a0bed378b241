package service

import (
	"context"
	"testing"

	"github.com/mealhow/mealhow-api/internal/domain/model"
	"github.com/mealhow/mealhow-api/internal/domain/nutrition"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
	"github.com/mealhow/mealhow-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInfo() model.PersonalInfo {
	return model.PersonalInfo{
		Age:               30,
		BiologicalSex:     "male",
		Goal:              "lose_weight",
		ActivityLevel:     "moderately_active",
		MeasurementSystem: model.MeasurementMetric,
		Height:            180,
		CurrentWeight:     85,
		WeightGoal:        78,
	}
}

func TestUserService_CreateProfile(t *testing.T) {
	t.Run("metric profile", func(t *testing.T) {
		var created *model.User
		repo := &mocks.UserRepoDouble{
			CreateFunc: func(_ context.Context, user *model.User) error {
				created = user
				return nil
			},
		}
		svc, err := NewUserService(UserServiceOptions{Repo: repo})
		require.NoError(t, err)

		user, err := svc.CreateProfile(context.Background(), CreateProfileInput{
			ID:    "auth0|user-1",
			Email: "user@example.com",
			Info:  validInfo(),
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, "auth0|user-1", user.ID)
		assert.InDelta(t, 180.0, user.HeightCm, 0.01)
		assert.InDelta(t, nutrition.HeightToImperial(180), user.HeightInches, 0.01)

		wantBMR := nutrition.BasalMetabolicRate(85, 180, 30, "male")
		assert.Equal(t, wantBMR, user.BMR)
		assert.Zero(t, user.CaloriesGoal%100, "calorie goal must be rounded to the nearest 100")

		require.Len(t, user.CurrentWeight, 1)
		assert.InDelta(t, 85.0, user.CurrentWeight[0].WeightKg, 0.01)
		assert.InDelta(t, nutrition.BMI(85, 180), user.CurrentWeight[0].BMI, 0.01)
		require.Len(t, user.WeightGoal, 1)
		assert.InDelta(t, 78.0, user.WeightGoal[0].WeightKg, 0.01)

		assert.Equal(t, 30, user.Age(user.CreatedAt))
	})

	t.Run("imperial values are stored in both systems", func(t *testing.T) {
		repo := &mocks.UserRepoDouble{
			CreateFunc: func(context.Context, *model.User) error { return nil },
		}
		svc, err := NewUserService(UserServiceOptions{Repo: repo})
		require.NoError(t, err)

		info := validInfo()
		info.MeasurementSystem = model.MeasurementImperial
		info.Height = 70.9    // inches
		info.CurrentWeight = 187.4 // lbs
		info.WeightGoal = 172

		user, err := svc.CreateProfile(context.Background(), CreateProfileInput{ID: "u", Info: info})
		require.NoError(t, err)
		assert.InDelta(t, 180.1, user.HeightCm, 0.2)
		assert.InDelta(t, 85.0, user.CurrentWeight[0].WeightKg, 0.2)
		assert.InDelta(t, 187.4, user.CurrentWeight[0].WeightLbs, 0.2)
	})

	t.Run("invalid input", func(t *testing.T) {
		svc, err := NewUserService(UserServiceOptions{Repo: &mocks.UserRepoDouble{}})
		require.NoError(t, err)

		for name, mutate := range map[string]func(*model.PersonalInfo){
			"zero age":           func(i *model.PersonalInfo) { i.Age = 0 },
			"zero height":        func(i *model.PersonalInfo) { i.Height = 0 },
			"zero weight":        func(i *model.PersonalInfo) { i.CurrentWeight = 0 },
			"bad sex":            func(i *model.PersonalInfo) { i.BiologicalSex = "other" },
			"bad measurement":    func(i *model.PersonalInfo) { i.MeasurementSystem = "nautical" },
		} {
			t.Run(name, func(t *testing.T) {
				info := validInfo()
				mutate(&info)
				_, createErr := svc.CreateProfile(context.Background(), CreateProfileInput{ID: "u", Info: info})
				require.True(t, apperrors.IsValidation(createErr))
			})
		}
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	updated := testUser()

	var persistedBMR, persistedCalories int
	repo := &mocks.UserRepoDouble{
		UpdateProfileFunc: func(_ context.Context, id string, _ model.PersonalInfo) (*model.User, error) {
			assert.Equal(t, "user-1", id)
			return updated, nil
		},
		UpdateCaloriesGoalFunc: func(_ context.Context, _ string, bmr, calories int) error {
			persistedBMR, persistedCalories = bmr, calories
			return nil
		},
	}
	svc, err := NewUserService(UserServiceOptions{Repo: repo})
	require.NoError(t, err)

	user, err := svc.UpdateProfile(context.Background(), "user-1", validInfo())
	require.NoError(t, err)
	assert.Equal(t, persistedBMR, user.BMR)
	assert.Equal(t, persistedCalories, user.CaloriesGoal)
	assert.Positive(t, user.BMR)
}

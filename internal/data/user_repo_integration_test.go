package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mealhow/mealhow-api/internal/domain/model"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
	"github.com/mealhow/mealhow-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(id string) *model.User {
	return &model.User{
		ID:                id,
		Email:             "test@example.com",
		Name:              "Test User",
		Goal:              "lose_weight",
		BiologicalSex:     "male",
		BirthDate:         time.Date(1996, 3, 15, 0, 0, 0, 0, time.UTC),
		ActivityLevel:     "moderately_active",
		MeasurementSystem: model.MeasurementMetric,
		HeightCm:          180,
		HeightInches:      70.9,
		BMR:               1875,
		CaloriesGoal:      2400,
		CurrentWeight: []model.WeightRecord{
			{WeightKg: 85, WeightLbs: 187.4, BMI: 26.2, RecordedAt: time.Now().UTC().Truncate(time.Millisecond)},
		},
		WeightGoal: []model.WeightRecord{
			{WeightKg: 78, WeightLbs: 172, BMI: 24.1, RecordedAt: time.Now().UTC().Truncate(time.Millisecond)},
		},
	}
}

func TestUserRepo_Integration_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewUserRepo(db)
		ctx := context.Background()

		user := testUser("auth0|integration-1")
		require.NoError(t, repo.Create(ctx, user))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "lose_weight", got.Goal)
		assert.Equal(t, model.MeasurementMetric, got.MeasurementSystem)
		assert.Equal(t, 1875, got.BMR)
		assert.Equal(t, 2400, got.CaloriesGoal)
		require.Len(t, got.CurrentWeight, 1)
		require.Len(t, got.WeightGoal, 1)
		assert.InDelta(t, 85, got.CurrentWeight[0].WeightKg, 0.001)
		assert.InDelta(t, 78, got.WeightGoal[0].WeightKg, 0.001)
	})
}

func TestUserRepo_Integration_DuplicateCreateIsConflict(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewUserRepo(db)
		ctx := context.Background()

		user := testUser("auth0|integration-dup")
		require.NoError(t, repo.Create(ctx, user))

		err := repo.Create(ctx, testUser("auth0|integration-dup"))
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err), "duplicate id should map to conflict, got: %v", err)
	})
}

func TestUserRepo_Integration_GetMissingIsNotFound(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewUserRepo(db)

		_, err := repo.GetByID(context.Background(), "auth0|nobody")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUserRepo_Integration_UpdateProfileAppendsWeightHistory(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewUserRepo(db)
		ctx := context.Background()

		user := testUser("auth0|integration-update")
		require.NoError(t, repo.Create(ctx, user))

		updated, err := repo.UpdateProfile(ctx, user.ID, model.PersonalInfo{
			Age:               30,
			BiologicalSex:     "male",
			Goal:              "maintain_weight",
			ActivityLevel:     "lightly_active",
			MeasurementSystem: model.MeasurementMetric,
			Height:            180,
			CurrentWeight:     83,
			WeightGoal:        78,
		})
		require.NoError(t, err)

		assert.Equal(t, "maintain_weight", updated.Goal)
		assert.Equal(t, "lightly_active", updated.ActivityLevel)
		// One record from Create plus one appended by the update, newest first.
		require.Len(t, updated.CurrentWeight, 2)
		assert.InDelta(t, 83, updated.CurrentWeight[0].WeightKg, 0.001)
		require.Len(t, updated.WeightGoal, 2)
	})
}

func TestUserRepo_Integration_UpdateProfileImperialStoresBothUnits(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewUserRepo(db)
		ctx := context.Background()

		user := testUser("auth0|integration-imperial")
		require.NoError(t, repo.Create(ctx, user))

		updated, err := repo.UpdateProfile(ctx, user.ID, model.PersonalInfo{
			Age:               30,
			BiologicalSex:     "male",
			Goal:              "lose_weight",
			ActivityLevel:     "moderately_active",
			MeasurementSystem: model.MeasurementImperial,
			Height:            70,
			CurrentWeight:     187,
		})
		require.NoError(t, err)

		assert.InDelta(t, 70, updated.HeightInches, 0.001)
		assert.InDelta(t, 177.8, updated.HeightCm, 0.1)
		require.NotEmpty(t, updated.CurrentWeight)
		assert.InDelta(t, 187, updated.CurrentWeight[0].WeightLbs, 0.001)
		assert.InDelta(t, 84.8, updated.CurrentWeight[0].WeightKg, 0.1)
	})
}

func TestUserRepo_Integration_UpdateCaloriesGoal(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewUserRepo(db)
		ctx := context.Background()

		user := testUser("auth0|integration-calories")
		require.NoError(t, repo.Create(ctx, user))

		require.NoError(t, repo.UpdateCaloriesGoal(ctx, user.ID, 1700, 2100))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 1700, got.BMR)
		assert.Equal(t, 2100, got.CaloriesGoal)

		err = repo.UpdateCaloriesGoal(ctx, "auth0|nobody", 1700, 2100)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mealhow/mealhow-api/internal/data/pgxutil"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	"github.com/mealhow/mealhow-api/internal/domain/nutrition"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
)

const userColumns = `id, email, name, goal, biological_sex, birth_date, activity_level,
	measurement_system, meal_prep_time, protein_goal, avoid_foods, preferred_cuisines,
	health_conditions, height_cm, height_inches, bmr, calories_goal, timezone, created_at`

// UserRepo provides database operations for user profiles. Weight history
// lives in a separate table keyed by kind, so profile updates append records
// instead of overwriting them.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a UserRepo with a custom time provider
// (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// Create inserts the profile row and its initial weight records in one
// transaction. The id must be the verified token subject.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		return apperrors.ValidationField("user_id", "User id is required")
	}
	now := r.timeProvider.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, fmt.Sprintf(`
			INSERT INTO users (%s)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
			userColumns),
			user.ID, user.Email, user.Name, user.Goal, user.BiologicalSex,
			user.BirthDate, user.ActivityLevel, string(user.MeasurementSystem),
			user.MealPrepTime, user.ProteinGoal, user.AvoidFoods,
			user.PreferredCuisines, user.HealthConditions, user.HeightCm,
			user.HeightInches, user.BMR, user.CaloriesGoal, user.Timezone,
			user.CreatedAt)
		if execErr != nil {
			return execErr
		}
		if insertErr := insertWeightRecords(ctx, tx, user.ID, "current", user.CurrentWeight); insertErr != nil {
			return insertErr
		}
		return insertWeightRecords(ctx, tx, user.ID, "goal", user.WeightGoal)
	})
	return apperrors.MapDBError(err)
}

// GetByID returns the profile with its full weight history, newest record
// first, or a NotFound error.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user *model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx,
			fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns), id)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		found, collectErr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		if collectErr != nil {
			return collectErr
		}
		user = &found

		current, histErr := loadWeightRecords(ctx, conn, id, "current")
		if histErr != nil {
			return histErr
		}
		goal, histErr := loadWeightRecords(ctx, conn, id, "goal")
		if histErr != nil {
			return histErr
		}
		user.CurrentWeight = current
		user.WeightGoal = goal
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.MapDBError(err)
	}
	return user, nil
}

// UpdateProfile applies the editable profile subset, appends weight records
// for changed weights and returns the refreshed profile. Heights and weights
// are stored in both unit systems regardless of the system they arrived in.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, info model.PersonalInfo) (*model.User, error) {
	now := r.timeProvider.Now().UTC()

	heightCm, heightInches := normalizeHeight(info.Height, info.MeasurementSystem)
	currentKg, currentLbs := normalizeWeight(info.CurrentWeight, info.MeasurementSystem)
	goalKg, goalLbs := normalizeWeight(info.WeightGoal, info.MeasurementSystem)
	birthDate := now.AddDate(-info.Age, 0, 0)

	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		tag, execErr := tx.Exec(ctx, `
			UPDATE users SET
				goal = $1, biological_sex = $2, birth_date = $3,
				activity_level = $4, measurement_system = $5,
				meal_prep_time = $6, protein_goal = $7, avoid_foods = $8,
				preferred_cuisines = $9, health_conditions = $10,
				height_cm = $11, height_inches = $12
			WHERE id = $13`,
			info.Goal, info.BiologicalSex, birthDate,
			info.ActivityLevel, string(info.MeasurementSystem),
			info.MealPrepTime, info.ProteinGoal, info.AvoidFoods,
			info.PreferredCuisines, info.HealthConditions,
			heightCm, heightInches, id)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("User not found")
		}

		records := []struct {
			kind     string
			kg, lbs  float64
			provided bool
		}{
			{"current", currentKg, currentLbs, info.CurrentWeight > 0},
			{"goal", goalKg, goalLbs, info.WeightGoal > 0},
		}
		for _, rec := range records {
			if !rec.provided {
				continue
			}
			record := model.WeightRecord{
				WeightKg:   rec.kg,
				WeightLbs:  rec.lbs,
				BMI:        nutrition.BMI(rec.kg, heightCm),
				RecordedAt: now,
			}
			if insertErr := insertWeightRecords(ctx, tx, id, rec.kind, []model.WeightRecord{record}); insertErr != nil {
				return insertErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return r.GetByID(ctx, id)
}

// UpdateCaloriesGoal persists a recomputed calorie target. Called before a
// meal plan job is dispatched so the worker reads consistent state.
func (r *UserRepo) UpdateCaloriesGoal(ctx context.Context, id string, bmr, caloriesGoal int) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx,
			`UPDATE users SET bmr = $1, calories_goal = $2 WHERE id = $3`,
			bmr, caloriesGoal, id)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("User not found")
		}
		return nil
	})
	return apperrors.MapDBError(err)
}

func insertWeightRecords(ctx context.Context, tx pgx.Tx, userID, kind string, records []model.WeightRecord) error {
	for _, rec := range records {
		if _, err := tx.Exec(ctx, `
			INSERT INTO weight_records (user_id, kind, weight_lbs, weight_kg, bmi, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			userID, kind, rec.WeightLbs, rec.WeightKg, rec.BMI, rec.RecordedAt); err != nil {
			return err
		}
	}
	return nil
}

func loadWeightRecords(ctx context.Context, conn *pgx.Conn, userID, kind string) ([]model.WeightRecord, error) {
	rows, err := conn.Query(ctx, `
		SELECT weight_lbs, weight_kg, bmi, recorded_at
		FROM weight_records
		WHERE user_id = $1 AND kind = $2
		ORDER BY recorded_at DESC`, userID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.WeightRecord])
}

// normalizeHeight returns the height in both unit systems given the system
// the value was reported in.
func normalizeHeight(height float64, system model.MeasurementSystem) (cm, inches float64) {
	if system == model.MeasurementImperial {
		return nutrition.HeightToMetric(height), height
	}
	return height, nutrition.HeightToImperial(height)
}

// normalizeWeight returns the weight in both unit systems given the system
// the value was reported in.
func normalizeWeight(weight float64, system model.MeasurementSystem) (kg, lbs float64) {
	if system == model.MeasurementImperial {
		return nutrition.WeightToMetric(weight), weight
	}
	return weight, nutrition.WeightToImperial(weight)
}

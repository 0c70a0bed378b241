package model

import "time"

// MeasurementSystem selects the unit system a user reports values in.
type MeasurementSystem string

const (
	MeasurementMetric   MeasurementSystem = "metric"
	MeasurementImperial MeasurementSystem = "imperial"
)

// WeightRecord is one weight observation, stored in both unit systems.
type WeightRecord struct {
	WeightLbs  float64   `json:"weight_lbs"  db:"weight_lbs"`
	WeightKg   float64   `json:"weight_kg"   db:"weight_kg"`
	BMI        float64   `json:"bmi"         db:"bmi"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// PersonalInfo is the profile subset users can read and update directly.
type PersonalInfo struct {
	Age               int               `json:"age"`
	BiologicalSex     string            `json:"biological_sex"`
	Goal              string            `json:"goal"`
	ActivityLevel     string            `json:"activity_level"`
	MeasurementSystem MeasurementSystem `json:"measurement_system"`
	MealPrepTime      string            `json:"meal_prep_time,omitempty"`
	AvoidFoods        []string          `json:"avoid_foods,omitempty"`
	PreferredCuisines []string          `json:"preferred_cuisines,omitempty"`
	HealthConditions  []string          `json:"health_conditions,omitempty"`
	Height            float64           `json:"height"`
	CurrentWeight     float64           `json:"current_weight"`
	WeightGoal        float64           `json:"weight_goal"`
	ProteinGoal       string            `json:"protein_goal,omitempty"`
}

// User is the owner record for all meal-planning resources. The ID is the
// verified token subject, so ownership checks never need a join.
type User struct {
	ID                string            `json:"user_id"        db:"id"`
	Email             string            `json:"email"          db:"email"`
	Name              string            `json:"name"           db:"name"`
	Goal              string            `json:"goal"           db:"goal"`
	BiologicalSex     string            `json:"biological_sex" db:"biological_sex"`
	BirthDate         time.Time         `json:"-"              db:"birth_date"`
	ActivityLevel     string            `json:"activity_level" db:"activity_level"`
	MeasurementSystem MeasurementSystem `json:"measurement_system" db:"measurement_system"`
	MealPrepTime      string            `json:"meal_prep_time,omitempty" db:"meal_prep_time"`
	ProteinGoal       string            `json:"protein_goal,omitempty"   db:"protein_goal"`
	AvoidFoods        []string          `json:"avoid_foods,omitempty"        db:"avoid_foods"`
	PreferredCuisines []string          `json:"preferred_cuisines,omitempty" db:"preferred_cuisines"`
	HealthConditions  []string          `json:"health_conditions,omitempty"  db:"health_conditions"`
	HeightCm          float64           `json:"height_cm"      db:"height_cm"`
	HeightInches      float64           `json:"height_inches"  db:"height_inches"`
	CurrentWeight     []WeightRecord    `json:"current_weight" db:"-"`
	WeightGoal        []WeightRecord    `json:"weight_goal"    db:"-"`
	BMR               int               `json:"bmr"            db:"bmr"`
	CaloriesGoal      int               `json:"calories_goal"  db:"calories_goal"`
	Timezone          string            `json:"timezone,omitempty" db:"timezone"`
	CreatedAt         time.Time         `json:"created_at"     db:"created_at"`
}

// Age returns the user's age in whole years at the given time.
func (u User) Age(now time.Time) int {
	years := now.Year() - u.BirthDate.Year()
	anniversary := u.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

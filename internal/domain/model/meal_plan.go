package model

import (
	"encoding/json"
	"time"
)

// MealPlan is a worker-generated weekly plan owned by a single user.
// The API reads plans by owner and status; the generation worker creates them
// and moves them through the JobStatus lifecycle.
type MealPlan struct {
	ID        string          `json:"meal_plan_id" db:"id"`
	UserID    string          `json:"-"            db:"user_id"`
	Status    JobStatus       `json:"status"       db:"status"`
	Details   json.RawMessage `json:"details"      db:"details"`
	CreatedAt time.Time       `json:"created_at"   db:"created_at"`
}

// MealPlanRequest is the client input for a meal plan generation job.
type MealPlanRequest struct {
	DurationDays int      `json:"duration_days,omitempty"`
	AvoidFoods   []string `json:"avoid_foods,omitempty"`
}

// MealPlanJob is the payload published to the meal plan generation topic.
// The worker reads everything it needs from this message plus the owner's
// user record, which is recomputed just before dispatch.
type MealPlanJob struct {
	UserID       string   `json:"user_id"`
	CaloriesGoal int      `json:"calories_goal"`
	DurationDays int      `json:"duration_days,omitempty"`
	AvoidFoods   []string `json:"avoid_foods,omitempty"`
}

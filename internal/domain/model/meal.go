package model

import "time"

// Meal is a single generated meal shared across plans. Meals are written by
// the generation workers; the API reads them and manages favorites.
type Meal struct {
	ID              string     `json:"meal_id"        db:"id"`
	FullName        string     `json:"full_name"      db:"full_name"`
	Calories        int        `json:"calories"       db:"calories"`
	Protein         int        `json:"protein"        db:"protein"`
	Carbs           int        `json:"carbs"          db:"carbs"`
	Fats            int        `json:"fats"           db:"fats"`
	PreparationTime int        `json:"preparation_time" db:"preparation_time"`
	Recipe          string     `json:"recipe,omitempty" db:"recipe"`
	ImageURL        string     `json:"image_url,omitempty" db:"image_url"`
	CreatedAt       time.Time  `json:"created_at"     db:"created_at"`
}

// FavoriteMeal links a user to a meal they marked as favorite. Soft-deleted so
// re-favoriting restores the original row.
type FavoriteMeal struct {
	ID        string     `json:"id"         db:"id"`
	UserID    string     `json:"-"          db:"user_id"`
	MealID    string     `json:"meal_id"    db:"meal_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"-"          db:"deleted_at"`
}

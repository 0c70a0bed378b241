package model

import "time"

// ShoppingListItem is a single product line on a shopping list.
type ShoppingListItem struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Quantity string `json:"quantity"`
	Marked   bool   `json:"marked"`
}

// ShoppingList is a worker-generated list of groceries derived from a set of
// meals. Soft-deleted rather than removed.
type ShoppingList struct {
	ID            string             `json:"shopping_list_id" db:"id"`
	UserID        string             `json:"-"                db:"user_id"`
	Name          string             `json:"name"             db:"name"`
	Status        JobStatus          `json:"status"           db:"status"`
	Items         []ShoppingListItem `json:"items,omitempty"  db:"-"`
	LinkedMealIDs []string           `json:"-"                db:"-"`
	TotalItems    int                `json:"total_items"      db:"-"`
	CreatedAt     time.Time          `json:"created_at"       db:"created_at"`
	DeletedAt     *time.Time         `json:"-"                db:"deleted_at"`
}

// ShoppingListRequest is the client input for a shopping list generation job.
type ShoppingListRequest struct {
	Name    string   `json:"name"`
	MealIDs []string `json:"meal_ids"`
}

// ShoppingListJob is the payload published to the shopping list generation topic.
type ShoppingListJob struct {
	UserID  string   `json:"user_id"`
	Name    string   `json:"name"`
	MealIDs []string `json:"meal_ids"`
}

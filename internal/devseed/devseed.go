// Package devseed inserts a small demo catalog into a development database so
// a fresh checkout has meals to favorite and put on shopping lists. Seeding is
// idempotent: fixed IDs plus ON CONFLICT DO NOTHING make reruns harmless.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

type demoMeal struct {
	id              uuid.UUID
	fullName        string
	calories        int
	protein         int
	carbs           int
	fats            int
	preparationTime int
	recipe          string
}

var demoMeals = []demoMeal{
	{
		id:              uuid.MustParse("6f1c2a34-9b1d-4c5e-8f07-101112131401"),
		fullName:        "Overnight Oats with Berries",
		calories:        420,
		protein:         18,
		carbs:           62,
		fats:            12,
		preparationTime: 10,
		recipe:          "Combine oats, milk and chia seeds. Refrigerate overnight, top with berries.",
	},
	{
		id:              uuid.MustParse("6f1c2a34-9b1d-4c5e-8f07-101112131402"),
		fullName:        "Grilled Chicken Salad",
		calories:        520,
		protein:         42,
		carbs:           24,
		fats:            28,
		preparationTime: 25,
		recipe:          "Grill the chicken breast, slice and serve over greens with vinaigrette.",
	},
	{
		id:              uuid.MustParse("6f1c2a34-9b1d-4c5e-8f07-101112131403"),
		fullName:        "Salmon with Roasted Vegetables",
		calories:        610,
		protein:         38,
		carbs:           32,
		fats:            34,
		preparationTime: 35,
		recipe:          "Roast the salmon fillet and vegetables at 200C for 20 minutes.",
	},
	{
		id:              uuid.MustParse("6f1c2a34-9b1d-4c5e-8f07-101112131404"),
		fullName:        "Lentil Curry with Rice",
		calories:        560,
		protein:         22,
		carbs:           86,
		fats:            14,
		preparationTime: 40,
		recipe:          "Simmer lentils in coconut milk with curry paste. Serve over basmati rice.",
	},
	{
		id:              uuid.MustParse("6f1c2a34-9b1d-4c5e-8f07-101112131405"),
		fullName:        "Greek Yogurt Parfait",
		calories:        320,
		protein:         24,
		carbs:           38,
		fats:            8,
		preparationTime: 5,
		recipe:          "Layer yogurt with granola and honey.",
	},
}

// Run inserts the demo meals. Safe to call on every startup.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	const insertMeal = `
		INSERT INTO meals (id, full_name, calories, protein, carbs, fats, preparation_time, recipe)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	var inserted int64
	for _, meal := range demoMeals {
		res, err := db.ExecContext(ctx, insertMeal,
			meal.id, meal.fullName, meal.calories, meal.protein, meal.carbs,
			meal.fats, meal.preparationTime, meal.recipe)
		if err != nil {
			return fmt.Errorf("seed meal %q: %w", meal.fullName, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if logger != nil {
		logger.InfoContext(ctx, "demo data seeded",
			"meals_total", len(demoMeals),
			"meals_inserted", inserted,
		)
	}
	return nil
}

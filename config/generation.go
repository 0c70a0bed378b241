package config

import "time"

// GenerationConfig contains configuration for the async generation bridge:
// dispatch topics and the bounded poll loop that waits for worker results.
type GenerationConfig struct {
	// ProjectID is the project segment used when constructing fully qualified
	// topic names ("projects/<project>/topics/<topic>").
	ProjectID string `env:"PROJECT_ID" envDefault:"mealhow"`

	// MealPlanTopicID is the topic generation requests for meal plans are
	// published to.
	MealPlanTopicID string `env:"MEAL_PLAN_TOPIC_ID" envDefault:"meal-plan-generation"`

	// ShoppingListTopicID is the topic generation requests for shopping lists
	// are published to.
	ShoppingListTopicID string `env:"SHOPPING_LIST_TOPIC_ID" envDefault:"shopping-list-generation"`

	// PollInterval is the delay between poll attempts while waiting for a
	// dispatched job to leave the in-progress state.
	PollInterval time.Duration `env:"JOB_POLL_INTERVAL" envDefault:"1s"`

	// PollMaxAttempts bounds the poll loop. The wall-clock budget is
	// PollInterval * PollMaxAttempts.
	PollMaxAttempts int `env:"JOB_POLL_MAX_ATTEMPTS" envDefault:"30"`
}

// Sanitize applies guardrails to generation configuration values.
func (g *GenerationConfig) Sanitize() {
	if g.PollInterval <= 0 {
		g.PollInterval = time.Second
	}
	if g.PollMaxAttempts <= 0 {
		g.PollMaxAttempts = 30
	}
}

package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mealhow/mealhow-api/config"
	"github.com/mealhow/mealhow-api/internal/adapters/auth0"
	"github.com/mealhow/mealhow-api/internal/adapters/devauth"
	redisadapter "github.com/mealhow/mealhow-api/internal/adapters/redis"
	"github.com/mealhow/mealhow-api/internal/adapters/redispub"
	"github.com/mealhow/mealhow-api/internal/data"
	httpx "github.com/mealhow/mealhow-api/internal/http"
	"github.com/mealhow/mealhow-api/internal/observability/statsd"
	"github.com/mealhow/mealhow-api/internal/ports"
	"github.com/mealhow/mealhow-api/internal/service"
	"github.com/redis/go-redis/v9"
)

// devPermissions are granted to every dev-mode token so scope-guarded routes
// stay reachable without an Auth0 tenant.
var devPermissions = []string{"read:meal-plans", "write:meal-plans"}

// ServiceDeps contains dependencies for service construction.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the constructed service layer plus the token
// verifier the HTTP gate wraps around everything.
type ServiceContainer struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Meals         *service.MealService
	MealPlans     *service.MealPlanService
	ShoppingLists *service.ShoppingListService
	Maintenance   *service.MaintenanceService
	Verifier      ports.TokenVerifier
	LoginLimiter  httpx.RateLimiter
	Metrics       *statsd.Client
}

// NewServices wires adapters, repositories and services from shared
// infrastructure.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	cfg := deps.Config

	idp, verifier, err := newIdentityStack(cfg, deps.Logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	publisher, err := redispub.NewPublisher(deps.RedisClient, deps.Logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create publisher: %w", err)
	}

	var limiter httpx.RateLimiter
	if cfg.AuthThrottle.Enabled {
		throttle, terr := redisadapter.NewLoginThrottle(
			deps.RedisClient, cfg.AuthThrottle.Limit, cfg.AuthThrottle.Window)
		if terr != nil {
			return ServiceContainer{}, fmt.Errorf("create login throttle: %w", terr)
		}
		limiter = throttle
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.Enabled,
		Address: cfg.Metrics.Address,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create metrics client: %w", err)
	}

	userRepo := data.NewUserRepo(deps.DB)
	mealRepo := data.NewMealRepo(deps.DB)
	planRepo := data.NewMealPlanRepo(deps.DB)
	listRepo := data.NewShoppingListRepo(deps.DB)

	generation, err := service.NewGenerationService(service.GenerationServiceOptions{
		Publisher:       publisher,
		ProjectID:       cfg.Generation.ProjectID,
		PollInterval:    cfg.Generation.PollInterval,
		PollMaxAttempts: cfg.Generation.PollMaxAttempts,
		Logger:          deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create generation service: %w", err)
	}

	authSvc, err := service.NewAuthService(service.AuthServiceOptions{Provider: idp, Logger: deps.Logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create auth service: %w", err)
	}

	userSvc, err := service.NewUserService(service.UserServiceOptions{Repo: userRepo, Logger: deps.Logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create user service: %w", err)
	}

	mealSvc, err := service.NewMealService(service.MealServiceOptions{Repo: mealRepo, Logger: deps.Logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create meal service: %w", err)
	}

	planSvc, err := service.NewMealPlanService(service.MealPlanServiceOptions{
		Repo:          planRepo,
		Users:         userRepo,
		Generation:    generation,
		MealPlanTopic: cfg.Generation.MealPlanTopicID,
		Logger:        deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create meal plan service: %w", err)
	}

	listSvc, err := service.NewShoppingListService(service.ShoppingListServiceOptions{
		Repo:              listRepo,
		Meals:             mealRepo,
		Generation:        generation,
		ShoppingListTopic: cfg.Generation.ShoppingListTopicID,
		Logger:            deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create shopping list service: %w", err)
	}

	maintenanceSvc, err := service.NewMaintenanceService(service.MaintenanceServiceOptions{
		Repo:    data.NewMaintenanceRepo(deps.DB),
		Config:  cfg.Maintenance,
		Logger:  deps.Logger,
		Metrics: metrics,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create maintenance service: %w", err)
	}

	return ServiceContainer{
		Auth:          authSvc,
		Users:         userSvc,
		Meals:         mealSvc,
		MealPlans:     planSvc,
		ShoppingLists: listSvc,
		Maintenance:   maintenanceSvc,
		Verifier:      verifier,
		LoginLimiter:  limiter,
		Metrics:       metrics,
	}, nil
}

// newIdentityStack picks between the Auth0 stack and the local dev provider.
// Dev mode mints and verifies HS256 tokens locally; production requires a
// configured tenant.
func newIdentityStack(
	cfg *config.AppConfig,
	logger *slog.Logger,
) (ports.IdentityProvider, ports.TokenVerifier, error) {
	if cfg.Auth.DevMode {
		if logger != nil {
			logger.Warn("auth dev mode enabled, tokens are signed with a local secret")
		}
		provider, err := devauth.NewProvider(devauth.Config{
			Secret:      cfg.Auth.DevSecret,
			TokenTTL:    cfg.Auth.DevTokenTTL,
			Permissions: devPermissions,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		return provider, provider, nil
	}

	if cfg.Auth.Domain == "" || cfg.Auth.Audience == "" {
		return nil, nil, errors.New("auth: AUTH0_DOMAIN and AUTH0_API_DEFAULT_AUDIENCE are required unless AUTH0_DEV_MODE is set")
	}

	keys, err := auth0.NewKeySetCache(auth0.KeySetCacheOptions{
		URL:             cfg.Auth.JWKSURL(),
		RefreshInterval: cfg.Auth.KeyRefreshInterval,
		Logger:          logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create key set cache: %w", err)
	}

	verifier, err := auth0.NewVerifier(keys, cfg.Auth)
	if err != nil {
		return nil, nil, fmt.Errorf("create token verifier: %w", err)
	}

	idp, err := auth0.NewClient(auth0.ClientOptions{Config: cfg.Auth, Logger: logger})
	if err != nil {
		return nil, nil, fmt.Errorf("create identity provider client: %w", err)
	}

	return idp, verifier, nil
}

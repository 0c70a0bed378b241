package httpx

import (
	"log/slog"
	"net/http"

	"github.com/mealhow/mealhow-api/config"
	"github.com/mealhow/mealhow-api/internal/ports"
	"github.com/mealhow/mealhow-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Meals         *service.MealService
	MealPlans     *service.MealPlanService
	ShoppingLists *service.ShoppingListService
	Verifier      ports.TokenVerifier
	LoginLimiter  RateLimiter // Optional: rate limiter for the public auth endpoints
	HTTP          config.HTTPConfig
	Logger        *slog.Logger // Logger for middleware (optional)
}

// NewRouter creates and configures the HTTP router. Every route except the
// whitelisted paths and the public auth prefix sits behind the authorization
// gate.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()
	prefix := services.HTTP.APIPrefix

	mux.HandleFunc("GET /status", statusHandler)
	mux.HandleFunc("HEAD /status", statusHandler)

	throttled := func(h http.HandlerFunc) http.HandlerFunc {
		if services.LoginLimiter == nil {
			return h
		}
		return Throttle(services.LoginLimiter, services.Logger)(h)
	}

	authHandlers := &AuthHandlers{Svc: services.Auth, Logger: services.Logger}
	mux.HandleFunc("POST "+prefix+"/auth/login", throttled(authHandlers.Login))
	mux.HandleFunc("POST "+prefix+"/auth/signup", throttled(authHandlers.Signup))
	mux.HandleFunc("POST "+prefix+"/auth/password/reset", throttled(authHandlers.PasswordReset))

	userHandlers := &UserHandlers{Users: services.Users, Auth: services.Auth}
	mux.HandleFunc("POST "+prefix+"/user/profile", userHandlers.CreateProfile)
	mux.HandleFunc("GET "+prefix+"/user/profile", userHandlers.GetProfile)
	mux.HandleFunc("PATCH "+prefix+"/user/profile", userHandlers.UpdateProfile)
	mux.HandleFunc("PUT "+prefix+"/user/password", userHandlers.UpdatePassword)

	mealHandlers := &MealHandlers{Svc: services.Meals}
	// favorites before {id} so the literal segment wins during routing.
	mux.HandleFunc("GET "+prefix+"/meals/favorites", mealHandlers.ListFavorites)
	mux.HandleFunc("GET "+prefix+"/meals/{id}", mealHandlers.Get)
	mux.HandleFunc("POST "+prefix+"/meals/{id}/favorite", mealHandlers.SaveFavorite)
	mux.HandleFunc("DELETE "+prefix+"/meals/{id}/favorite", mealHandlers.UnmarkFavorite)

	planHandlers := &MealPlanHandlers{Svc: services.MealPlans}
	mux.HandleFunc("POST "+prefix+"/meal-plans", planHandlers.Create)
	mux.HandleFunc("GET "+prefix+"/meal-plans/current", planHandlers.Current)
	mux.HandleFunc("GET "+prefix+"/meal-plans/archive", planHandlers.Archive)
	mux.HandleFunc("POST "+prefix+"/meal-plans/{id}/archive", planHandlers.ArchivePlan)

	listHandlers := &ShoppingListHandlers{Svc: services.ShoppingLists}
	mux.HandleFunc("POST "+prefix+"/shopping-lists", listHandlers.Create)
	mux.HandleFunc("GET "+prefix+"/shopping-lists", listHandlers.List)
	mux.HandleFunc("GET "+prefix+"/shopping-lists/{id}", listHandlers.Get)
	mux.HandleFunc("GET "+prefix+"/shopping-lists/{id}/meals", listHandlers.Meals)
	mux.HandleFunc("DELETE "+prefix+"/shopping-lists/{id}", listHandlers.Delete)

	gate := Authenticate(GateOptions{
		Verifier: services.Verifier,
		HTTP:     services.HTTP,
		Logger:   services.Logger,
	})

	// SecureHeaders sits inside the gate: rejected requests leave without
	// security headers, whitelisted public paths skip them entirely.
	var handler http.Handler = mux
	handler = SecureHeaders(services.HTTP.WhitelistedPaths)(handler)
	handler = gate(handler)
	handler = CORS(services.HTTP.ClientOriginURLs)(handler)
	if services.Logger != nil {
		handler = Logging(services.Logger)(handler)
		handler = Recover(services.Logger)(handler)
	}
	return handler
}

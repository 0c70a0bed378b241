package httpx

import (
	"net/http"

	"github.com/mealhow/mealhow-api/internal/service"
)

// MealHandlers serves meal reads and the favorites endpoints.
type MealHandlers struct {
	Svc *service.MealService
}

// Get handles GET /v1/meals/{id}.
func (h *MealHandlers) Get(w http.ResponseWriter, r *http.Request) {
	meal, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, meal)
}

// ListFavorites handles GET /v1/meals/favorites.
func (h *MealHandlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	meals, err := h.Svc.ListFavorites(r.Context(), identity.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"favorites": meals})
}

// SaveFavorite handles POST /v1/meals/{id}/favorite.
func (h *MealHandlers) SaveFavorite(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	if err := h.Svc.SaveFavorite(r.Context(), identity.UserID, r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"message": "Meal favorited"})
}

// UnmarkFavorite handles DELETE /v1/meals/{id}/favorite.
func (h *MealHandlers) UnmarkFavorite(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	if err := h.Svc.UnmarkFavorite(r.Context(), identity.UserID, r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

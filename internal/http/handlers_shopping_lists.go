package httpx

import (
	"net/http"

	"github.com/mealhow/mealhow-api/internal/domain/model"
	"github.com/mealhow/mealhow-api/internal/service"
)

// ShoppingListHandlers serves the shopping list generation and lifecycle
// endpoints.
type ShoppingListHandlers struct {
	Svc *service.ShoppingListService
}

// Create handles POST /v1/shopping-lists. Blocks like meal plan creation.
func (h *ShoppingListHandlers) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	var req model.ShoppingListRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	list, err := h.Svc.Generate(r.Context(), identity.UserID, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, list)
}

// List handles GET /v1/shopping-lists.
func (h *ShoppingListHandlers) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	lists, err := h.Svc.List(r.Context(), identity.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"shopping_lists": lists})
}

// Get handles GET /v1/shopping-lists/{id}.
func (h *ShoppingListHandlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	list, err := h.Svc.Get(r.Context(), identity.UserID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// Meals handles GET /v1/shopping-lists/{id}/meals.
func (h *ShoppingListHandlers) Meals(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	meals, err := h.Svc.LinkedMeals(r.Context(), identity.UserID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"meals": meals})
}

// Delete handles DELETE /v1/shopping-lists/{id}.
func (h *ShoppingListHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	if err := h.Svc.Delete(r.Context(), identity.UserID, r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

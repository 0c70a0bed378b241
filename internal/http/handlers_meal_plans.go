package httpx

import (
	"net/http"

	"github.com/mealhow/mealhow-api/internal/domain/model"
	"github.com/mealhow/mealhow-api/internal/service"
)

// MealPlanHandlers serves the meal plan generation and lifecycle endpoints.
type MealPlanHandlers struct {
	Svc *service.MealPlanService
}

// Create handles POST /v1/meal-plans. The request blocks until the worker
// resolves the plan or the poll budget runs out (504).
func (h *MealPlanHandlers) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	var req model.MealPlanRequest
	if r.ContentLength != 0 {
		if !DecodeJSON(w, r, &req) {
			return
		}
	}

	plan, err := h.Svc.Generate(r.Context(), identity.UserID, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, plan)
}

// Current handles GET /v1/meal-plans/current. An optional ?filter= JMESPath
// expression projects the plan's details document.
func (h *MealPlanHandlers) Current(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	plan, err := h.Svc.Current(r.Context(), identity.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if expression := r.URL.Query().Get("filter"); expression != "" {
		filtered, filterErr := h.Svc.FilterDetails(plan, expression)
		if filterErr != nil {
			WriteAppError(w, filterErr)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"meal_plan_id": plan.ID,
			"status":       plan.Status,
			"details":      filtered,
		})
		return
	}
	WriteJSON(w, http.StatusOK, plan)
}

// Archive handles GET /v1/meal-plans/archive.
func (h *MealPlanHandlers) Archive(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	plans, err := h.Svc.ListArchived(r.Context(), identity.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"meal_plans": plans})
}

// ArchivePlan handles POST /v1/meal-plans/{id}/archive.
func (h *MealPlanHandlers) ArchivePlan(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	if err := h.Svc.Archive(r.Context(), identity.UserID, r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Meal plan archived"})
}

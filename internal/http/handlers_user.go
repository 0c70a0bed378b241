package httpx

import (
	"net/http"

	"github.com/mealhow/mealhow-api/internal/domain/model"
	"github.com/mealhow/mealhow-api/internal/service"
)

// UserHandlers serves the authenticated profile endpoints.
type UserHandlers struct {
	Users *service.UserService
	Auth  *service.AuthService
}

type createProfileRequest struct {
	Email string             `json:"email"`
	Name  string             `json:"name"`
	Info  model.PersonalInfo `json:"personal_info"`
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

// CreateProfile handles POST /v1/user/profile. The profile id is always the
// verified token subject; the body cannot pick a different owner.
func (h *UserHandlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	var req createProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Users.CreateProfile(r.Context(), service.CreateProfileInput{
		ID:    identity.UserID,
		Email: req.Email,
		Name:  req.Name,
		Info:  req.Info,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

// GetProfile handles GET /v1/user/profile.
func (h *UserHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	user, err := h.Users.Get(r.Context(), identity.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /v1/user/profile.
func (h *UserHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	var info model.PersonalInfo
	if !DecodeJSON(w, r, &info) {
		return
	}

	user, err := h.Users.UpdateProfile(r.Context(), identity.UserID, info)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// UpdatePassword handles PUT /v1/user/password through the identity provider.
func (h *UserHandlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Requires authentication")
		return
	}

	var req updatePasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Auth.UpdatePassword(r.Context(), identity.UserID, req.Password); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

package httpx

import (
	"log/slog"
	"net/http"

	"github.com/mealhow/mealhow-api/internal/ports"
	"github.com/mealhow/mealhow-api/internal/service"
)

// AuthHandlers serves the public authentication endpoints. These live under
// the whitelisted auth prefix and never see a verified identity.
type AuthHandlers struct {
	Svc    *service.AuthService
	Logger *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login handles POST /v1/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse(result))
}

// Signup handles POST /v1/auth/signup. A successful signup logs the account
// in and returns tokens, so clients onboard in one request.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Signup(r.Context(), ports.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tokenResponse(result))
}

// PasswordReset handles POST /v1/auth/password/reset.
func (h *AuthHandlers) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Svc.SendPasswordReset(r.Context(), req.Email); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "If the account exists, a reset email has been sent",
	})
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	apperrors "github.com/mealhow/mealhow-api/internal/errors"
	"github.com/mealhow/mealhow-api/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.IdentityProvider // Required: identity provider client
	Logger   *slog.Logger           // Optional: structured logger
}

// AuthService provides signup and credential operations backed by the
// identity provider. Token verification is not here; the request gate owns
// that.
type AuthService struct {
	provider ports.IdentityProvider
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Provider == nil {
		return nil, errors.New("IdentityProvider is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "auth_service")
	}

	return &AuthService{provider: opts.Provider, logger: logger}, nil
}

// Login exchanges email and password for an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (ports.LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return ports.LoginResult{}, apperrors.Validation("Email and password are required")
	}
	return s.provider.Login(ctx, email, password)
}

// Signup creates the account at the identity provider and immediately logs
// the new user in so the client gets a usable token in one round trip.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (ports.LoginResult, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		return ports.LoginResult{}, apperrors.Validation("Email and password are required")
	}

	userID, err := s.provider.Signup(ctx, in)
	if err != nil {
		return ports.LoginResult{}, err
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "account created", "user_id", userID)
	}
	return s.provider.Login(ctx, in.Email, in.Password)
}

// SendPasswordReset asks the identity provider to email a reset link. Always
// succeeds for well-formed input so callers cannot probe which addresses
// exist.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return apperrors.ValidationField("email", "Email is required")
	}
	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "password reset delivery failed", "error", err)
		}
		if apperrors.IsUnavailable(err) || apperrors.IsInternal(err) {
			return err
		}
	}
	return nil
}

// UpdatePassword sets a new password for the authenticated user.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.ValidationField("password", "Password must be at least 8 characters")
	}
	return s.provider.UpdatePassword(ctx, userID, newPassword)
}

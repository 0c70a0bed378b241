package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/mealhow/mealhow-api/internal/domain/auth"
)

// TokenVerifier validates a raw bearer token and returns its claims.
//
// Implementations must distinguish three failure classes so the gate can map
// them to the right status codes: unknown signing key or unreachable key
// source (server fault), signature/claims failure (client fault), and missing
// permissions (forbidden).
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domainauth.AccessClaims, error)
}

// KeySource provides the identity provider's current signing keys.
type KeySource interface {
	// KeyByID resolves a key by its key identifier from the cached set,
	// fetching the set first if the cache is empty.
	KeyByID(ctx context.Context, kid string) (any, error)

	// ForceRefresh invalidates the cached set and fetches a fresh copy.
	ForceRefresh(ctx context.Context) error
}

// SignupInput groups parameters for creating an account at the identity provider.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// LoginResult carries the tokens returned by a resource-owner login.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
}

// IdentityProvider wraps the identity provider's authentication and
// management APIs (login, signup, credential maintenance).
type IdentityProvider interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Signup(ctx context.Context, in SignupInput) (userID string, err error)
	SendPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID, newPassword string) error
}

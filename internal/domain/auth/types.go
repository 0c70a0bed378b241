package auth

// Package auth contains domain-level types for token-based authentication.
// It is pure and free of framework/adapter concerns.

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the assertions carried by a verified access token.
// Derived per-request; never persisted.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Scope is the space-delimited OAuth scope string, if present.
	Scope string `json:"scope,omitempty"`

	// Permissions are the granted API permissions (RBAC), used for
	// per-route scope checks.
	Permissions []string `json:"permissions,omitempty"`
}

// HasPermission reports whether the claims carry the given permission.
func (c AccessClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ExpiresIn returns the remaining token lifetime, or zero if no expiry is set.
func (c AccessClaims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// Identity is the request-scoped authenticated principal attached to the
// context by the authorization gate. Read by downstream handlers; never
// mutated.
type Identity struct {
	// UserID is the token subject.
	UserID string

	// RawToken is the bearer token as presented, kept for calls that act on
	// behalf of the user against the identity provider.
	RawToken string
}

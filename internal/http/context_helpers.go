package httpx

import (
	"context"

	domainauth "github.com/mealhow/mealhow-api/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same keys.
type identityKey struct{}

type claimsKey struct{}

// SetIdentityInContext returns a child context carrying the verified identity
// and its claims. The gate is the only writer.
func SetIdentityInContext(ctx context.Context, identity domainauth.Identity, claims domainauth.AccessClaims) context.Context {
	ctx = context.WithValue(ctx, identityKey{}, identity)
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetIdentityFromContext returns the verified identity and a boolean
// indicating presence. Absent on whitelisted routes.
func GetIdentityFromContext(ctx context.Context) (domainauth.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(domainauth.Identity)
	return identity, ok
}

// GetClaimsFromContext returns the verified token claims and a boolean
// indicating presence.
func GetClaimsFromContext(ctx context.Context) (domainauth.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(domainauth.AccessClaims)
	return claims, ok
}

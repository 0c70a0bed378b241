package auth0

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mealhow/mealhow-api/config"
	domainauth "github.com/mealhow/mealhow-api/internal/domain/auth"
	"github.com/mealhow/mealhow-api/internal/ports"
)

// ErrBadSignature indicates the token signature did not verify against the
// resolved signing key.
var ErrBadSignature = errors.New("bad token signature")

// ErrInvalidClaims indicates the token's standard claims (expiry, audience,
// issuer) failed validation.
var ErrInvalidClaims = errors.New("invalid token claims")

// ErrInsufficientScope indicates a verified token lacking a required
// permission. Distinct from authentication failure: maps to 403, not 401.
var ErrInsufficientScope = errors.New("insufficient scope")

// Compile-time conformance of the adapter types to their ports.
var (
	_ ports.KeySource     = (*KeySetCache)(nil)
	_ ports.TokenVerifier = (*Verifier)(nil)
)

// Verifier validates bearer access tokens against the provider's signing key
// set and the configured audience and issuer.
type Verifier struct {
	keys   ports.KeySource
	parser *jwt.Parser
}

// NewVerifier constructs a Verifier for the given auth configuration.
func NewVerifier(keys ports.KeySource, cfg config.AuthConfig) (*Verifier, error) {
	if keys == nil {
		return nil, errors.New("key source is required")
	}
	if cfg.Audience == "" {
		return nil, errors.New("API audience is required")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{cfg.Algorithms}),
		jwt.WithAudience(cfg.Audience),
		jwt.WithIssuer(cfg.IssuerURL()),
		jwt.WithExpirationRequired(),
	)
	return &Verifier{keys: keys, parser: parser}, nil
}

// Verify checks the token's signature against the key named by its header's
// key id, then validates expiry, audience and issuer. Scope enforcement is a
// separate, per-route concern (RequireScopes).
//
// An unknown key id triggers one forced key set refresh before failing, so
// tokens signed with a freshly rotated key verify without waiting out the
// cache TTL.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (domainauth.AccessClaims, error) {
	claims, err := v.verifyOnce(ctx, rawToken)
	if err != nil && errors.Is(err, ErrUnknownSigningKey) {
		if refreshErr := v.keys.ForceRefresh(ctx); refreshErr != nil {
			return domainauth.AccessClaims{}, mapParseError(refreshErr)
		}
		claims, err = v.verifyOnce(ctx, rawToken)
	}
	if err != nil {
		return domainauth.AccessClaims{}, mapParseError(err)
	}
	return claims, nil
}

func (v *Verifier) verifyOnce(ctx context.Context, rawToken string) (domainauth.AccessClaims, error) {
	var claims domainauth.AccessClaims

	_, err := v.parser.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: token header has no kid", ErrUnknownSigningKey)
		}
		return v.keys.KeyByID(ctx, kid)
	})
	if err != nil {
		return domainauth.AccessClaims{}, err
	}
	return claims, nil
}

// RequireScopes validates that all required scopes are present in the claims'
// permission list. Callers only invoke this on claims returned by Verify.
func RequireScopes(claims domainauth.AccessClaims, scopes ...string) error {
	for _, scope := range scopes {
		if !claims.HasPermission(scope) {
			return fmt.Errorf("%w: missing %q", ErrInsufficientScope, scope)
		}
	}
	return nil
}

// UnverifiedClaims decodes the token payload WITHOUT verifying the signature.
//
// Only for migrated legacy paths that need claim values from tokens already
// verified elsewhere. Never use the result for authorization decisions.
func UnverifiedClaims(rawToken string) (domainauth.AccessClaims, error) {
	var claims domainauth.AccessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, &claims); err != nil {
		return domainauth.AccessClaims{}, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

// mapParseError folds golang-jwt's error tree into the adapter's three
// failure classes, preserving the cause chain.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownSigningKey), errors.Is(err, ErrKeySourceUnavailable):
		return err
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %w", ErrInvalidClaims, err)
	default:
		// Malformed tokens and any other parse failure are claim-level
		// problems with the presented credential, not server faults.
		return fmt.Errorf("%w: %w", ErrInvalidClaims, err)
	}
}

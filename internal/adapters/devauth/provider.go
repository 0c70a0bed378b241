// Package devauth provides a self-contained identity stack for local
// development: an IdentityProvider that accepts any credentials and a
// TokenVerifier for the HMAC-signed tokens it mints. It removes the need for
// an Auth0 tenant on a laptop and must never run in production.
package devauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/mealhow/mealhow-api/internal/domain/auth"
	"github.com/mealhow/mealhow-api/internal/ports"
)

const (
	issuer   = "https://dev.mealhow.local/"
	audience = "mealhow-dev"
)

// Config controls the dev auth provider behavior.
type Config struct {
	// Secret signs and verifies tokens. Required.
	Secret string

	// TokenTTL bounds token lifetime. Defaults to 8h when zero.
	TokenTTL time.Duration

	// Permissions are granted to every minted token, so RequireScope-guarded
	// routes stay reachable in dev.
	Permissions []string
}

// Provider implements ports.IdentityProvider and ports.TokenVerifier for
// local development. Login accepts any email/password pair and mints an
// HS256 token whose subject is derived from the email, so a dev user owns
// the same records across restarts without any account storage.
type Provider struct {
	secret      []byte
	tokenTTL    time.Duration
	permissions []string
	parser      *jwt.Parser
	now         func() time.Time
}

var (
	_ ports.IdentityProvider = (*Provider)(nil)
	_ ports.TokenVerifier    = (*Provider)(nil)
)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("dev auth: Secret is required")
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	return &Provider{
		secret:      []byte(cfg.Secret),
		tokenTTL:    ttl,
		permissions: append([]string(nil), cfg.Permissions...),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256"}),
			jwt.WithAudience(audience),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}, nil
}

// Login accepts any non-empty credentials and returns a freshly minted token.
func (p *Provider) Login(_ context.Context, email, _ string) (ports.LoginResult, error) {
	token, err := p.mintToken(email)
	if err != nil {
		return ports.LoginResult{}, err
	}
	return ports.LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(p.tokenTTL.Seconds()),
	}, nil
}

// Signup returns the subject a later Login for the same email produces.
// Nothing is stored.
func (p *Provider) Signup(_ context.Context, in ports.SignupInput) (string, error) {
	return subjectForEmail(in.Email), nil
}

// SendPasswordReset is a no-op: dev accounts have no credentials to reset.
func (p *Provider) SendPasswordReset(context.Context, string) error { return nil }

// UpdatePassword is a no-op for the same reason.
func (p *Provider) UpdatePassword(context.Context, string, string) error { return nil }

// Verify validates a token minted by this provider.
func (p *Provider) Verify(_ context.Context, rawToken string) (domainauth.AccessClaims, error) {
	var claims domainauth.AccessClaims
	_, err := p.parser.ParseWithClaims(rawToken, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		return domainauth.AccessClaims{}, fmt.Errorf("dev token: %w", err)
	}
	return claims, nil
}

func (p *Provider) mintToken(email string) (string, error) {
	now := p.now().UTC()
	claims := domainauth.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectForEmail(email),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.tokenTTL)),
		},
		Permissions: p.permissions,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign dev token: %w", err)
	}
	return signed, nil
}

func subjectForEmail(email string) string {
	return "dev|" + strings.ToLower(strings.TrimSpace(email))
}

package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/mealhow/mealhow-api/config"
	"github.com/mealhow/mealhow-api/internal/adapters/auth0"
	domainauth "github.com/mealhow/mealhow-api/internal/domain/auth"
	"github.com/mealhow/mealhow-api/internal/ports"
)

const bearerPrefix = "Bearer "

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// GateOptions groups dependencies for the authorization gate.
type GateOptions struct {
	Verifier ports.TokenVerifier // Required: token verifier
	HTTP     config.HTTPConfig   // Whitelist and public path configuration
	Logger   *slog.Logger        // Optional: structured logger
}

// Authenticate returns the authorization gate every request passes through.
// Whitelisted paths and the public auth endpoints go straight through without
// touching the verifier; everything else must present a verifiable bearer
// token. Verifier faults that are not the client's doing (unknown signing
// key, unreachable key source) render as a server error, never as a 401.
func Authenticate(opts GateOptions) func(http.Handler) http.Handler {
	publicPrefix := opts.HTTP.PublicAuthPrefix()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(opts.HTTP.WhitelistedPaths, r.URL.Path) ||
				strings.HasPrefix(r.URL.Path, publicPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			rawToken, ok := bearerToken(r)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Requires authentication")
				return
			}

			claims, err := opts.Verifier.Verify(r.Context(), rawToken)
			if err != nil {
				code, message := gateFailure(err)
				if opts.Logger != nil && code == http.StatusInternalServerError {
					opts.Logger.ErrorContext(r.Context(), "token verification unavailable",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
					)
				}
				WriteError(w, code, message)
				return
			}

			identity := domainauth.Identity{UserID: claims.Subject, RawToken: rawToken}
			ctx := SetIdentityInContext(r.Context(), identity, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope returns a middleware that rejects verified requests whose
// token lacks the given permission. Must run after Authenticate.
func RequireScope(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaimsFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Requires authentication")
				return
			}
			if err := auth0.RequireScopes(claims, permission); err != nil {
				WriteError(w, http.StatusForbidden, "Permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter gates requests to the public auth endpoints. Limiters that also
// implement LimiterResetter get their counter cleared after the wrapped
// handler succeeds.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LimiterResetter clears the accumulated count for a key. A successful login
// resets the window so callers behind a shared NAT don't starve each other.
type LimiterResetter interface {
	Reset(ctx context.Context, key string) error
}

// Throttle returns a middleware that rate-limits a handler per client IP and
// path. Limiter failures fail open: losing Redis should slow attackers down,
// not lock users out.
func Throttle(limiter RateLimiter, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	resetter, _ := limiter.(LimiterResetter)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r) + " " + r.URL.Path
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				if logger != nil {
					logger.WarnContext(r.Context(), "login throttle unavailable",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
					)
				}
				next(w, r)
				return
			}
			if !allowed {
				WriteError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next(ww, r)

			if resetter != nil && ww.status < http.StatusBadRequest {
				if resetErr := resetter.Reset(r.Context(), key); resetErr != nil && logger != nil {
					logger.WarnContext(r.Context(), "login throttle reset failed",
						slog.Any("error", resetErr),
						slog.String("path", r.URL.Path),
					)
				}
			}
		}
	}
}

// clientIP resolves the caller's address, preferring the first hop in
// X-Forwarded-For when a proxy set it.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecureHeaders returns a middleware that sets baseline security headers.
// It runs inside the authorization gate, so rejected requests are never
// enriched, and the whitelisted public paths are skipped.
func SecureHeaders(skipPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(skipPaths, r.URL.Path) {
				h := w.Header()
				h.Set("X-Content-Type-Options", "nosniff")
				h.Set("X-Frame-Options", "DENY")
				h.Set("Referrer-Policy", "no-referrer")
				h.Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS returns a middleware restricting cross-origin access to the configured
// client origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(allowedOrigins, origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				h.Set("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header. The scheme
// comparison is case-insensitive per RFC 6750.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) <= len(bearerPrefix) ||
		!strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// gateFailure maps a verifier error to the status and message the gate
// renders. Key source faults are the server's problem; everything else about
// the token is the client's.
func gateFailure(err error) (int, string) {
	if errors.Is(err, auth0.ErrKeySourceUnavailable) || errors.Is(err, auth0.ErrUnknownSigningKey) {
		return http.StatusInternalServerError, "Unable to verify credentials"
	}
	return http.StatusUnauthorized, "Bad credentials"
}

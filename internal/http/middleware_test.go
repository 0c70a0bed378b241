package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mealhow/mealhow-api/config"
	"github.com/mealhow/mealhow-api/internal/adapters/auth0"
	domainauth "github.com/mealhow/mealhow-api/internal/domain/auth"
	"github.com/mealhow/mealhow-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPConfig() config.HTTPConfig {
	return config.HTTPConfig{
		APIPrefix:        "/v1",
		WhitelistedPaths: []string{"/status"},
	}
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func okHandler() (http.Handler, *bool) {
	called := new(bool)
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}), called
}

func TestAuthenticate(t *testing.T) {
	t.Run("whitelisted path bypasses the verifier", func(t *testing.T) {
		verifier := &mocks.VerifierDouble{}
		next, called := okHandler()
		gate := Authenticate(GateOptions{Verifier: verifier, HTTP: testHTTPConfig()})(next)

		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
		assert.Zero(t, verifier.Calls, "whitelisted requests must never reach the verifier")
	})

	t.Run("public auth prefix bypasses the verifier", func(t *testing.T) {
		verifier := &mocks.VerifierDouble{}
		next, called := okHandler()
		gate := Authenticate(GateOptions{Verifier: verifier, HTTP: testHTTPConfig()})(next)

		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))

		assert.True(t, *called)
		assert.Zero(t, verifier.Calls)
	})

	t.Run("missing header is 401 Requires authentication", func(t *testing.T) {
		verifier := &mocks.VerifierDouble{}
		next, called := okHandler()
		gate := Authenticate(GateOptions{Verifier: verifier, HTTP: testHTTPConfig()})(next)

		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/user/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Requires authentication", decodeErrorBody(t, rec)["message"])
		assert.False(t, *called)
		assert.Zero(t, verifier.Calls, "a missing credential must not reach the verifier")
	})

	t.Run("non-bearer scheme is 401", func(t *testing.T) {
		gate := Authenticate(GateOptions{Verifier: &mocks.VerifierDouble{}, HTTP: testHTTPConfig()})(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/v1/user/profile", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad credential is 401 Bad credentials", func(t *testing.T) {
		verifier := &mocks.VerifierDouble{
			VerifyFunc: func(context.Context, string) (domainauth.AccessClaims, error) {
				return domainauth.AccessClaims{}, auth0.ErrBadSignature
			},
		}
		gate := Authenticate(GateOptions{Verifier: verifier, HTTP: testHTTPConfig()})(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/v1/user/profile", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bad credentials", decodeErrorBody(t, rec)["message"])
	})

	t.Run("unknown signing key is a server fault", func(t *testing.T) {
		verifier := &mocks.VerifierDouble{
			VerifyFunc: func(context.Context, string) (domainauth.AccessClaims, error) {
				return domainauth.AccessClaims{}, auth0.ErrUnknownSigningKey
			},
		}
		gate := Authenticate(GateOptions{Verifier: verifier, HTTP: testHTTPConfig()})(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/v1/user/profile", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Unable to verify credentials", decodeErrorBody(t, rec)["message"])
	})

	t.Run("unreachable key source is a server fault", func(t *testing.T) {
		verifier := &mocks.VerifierDouble{
			VerifyFunc: func(context.Context, string) (domainauth.AccessClaims, error) {
				return domainauth.AccessClaims{}, auth0.ErrKeySourceUnavailable
			},
		}
		gate := Authenticate(GateOptions{Verifier: verifier, HTTP: testHTTPConfig()})(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/v1/user/profile", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("verified identity lands in the context", func(t *testing.T) {
		verifier := &mocks.VerifierDouble{
			VerifyFunc: func(_ context.Context, raw string) (domainauth.AccessClaims, error) {
				assert.Equal(t, "good-token", raw)
				return domainauth.AccessClaims{
					RegisteredClaims: jwt.RegisteredClaims{Subject: "auth0|user-1"},
					Permissions:      []string{"read:meal-plans"},
				}, nil
			},
		}

		var gotIdentity domainauth.Identity
		var gotClaims domainauth.AccessClaims
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotIdentity, _ = GetIdentityFromContext(r.Context())
			gotClaims, _ = GetClaimsFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		gate := Authenticate(GateOptions{Verifier: verifier, HTTP: testHTTPConfig()})(next)

		req := httptest.NewRequest(http.MethodGet, "/v1/user/profile", nil)
		req.Header.Set("Authorization", "bearer good-token") // scheme is case-insensitive
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "auth0|user-1", gotIdentity.UserID)
		assert.Equal(t, "good-token", gotIdentity.RawToken)
		assert.True(t, gotClaims.HasPermission("read:meal-plans"))
	})
}

func TestRequireScope(t *testing.T) {
	claims := domainauth.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "auth0|user-1"},
		Permissions:      []string{"read:meal-plans"},
	}
	identity := domainauth.Identity{UserID: "auth0|user-1"}

	t.Run("permission present", func(t *testing.T) {
		next, called := okHandler()
		mw := RequireScope("read:meal-plans")(next)

		req := httptest.NewRequest(http.MethodGet, "/v1/meal-plans/current", nil)
		req = req.WithContext(SetIdentityInContext(req.Context(), identity, claims))
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.True(t, *called)
	})

	t.Run("permission missing is 403 Permission denied", func(t *testing.T) {
		mw := RequireScope("admin:users")(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/v1/meal-plans/current", nil)
		req = req.WithContext(SetIdentityInContext(req.Context(), identity, claims))
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Permission denied", decodeErrorBody(t, rec)["message"])
	})

	t.Run("no verified claims is 401", func(t *testing.T) {
		mw := RequireScope("read:meal-plans")(http.NotFoundHandler())

		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/meal-plans/current", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

type limiterDouble struct {
	allow func(ctx context.Context, key string) (bool, error)
	keys  []string
}

func (l *limiterDouble) Allow(ctx context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow(ctx, key)
}

func TestSecureHeaders(t *testing.T) {
	t.Run("gated paths get the headers", func(t *testing.T) {
		next, _ := okHandler()
		handler := SecureHeaders([]string{"/status"})(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/user/profile", nil))

		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("skipped paths are left alone", func(t *testing.T) {
		next, called := okHandler()
		handler := SecureHeaders([]string{"/status"})(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		assert.True(t, *called)
		assert.Empty(t, rec.Header().Get("X-Content-Type-Options"))
		assert.Empty(t, rec.Header().Get("Cache-Control"))
	})

	t.Run("rejected requests are never enriched", func(t *testing.T) {
		// Composed the way the router composes them: the gate wraps the
		// header middleware, so a 401 leaves before headers are set.
		inner := SecureHeaders([]string{"/status"})(http.NotFoundHandler())
		gate := Authenticate(GateOptions{Verifier: &mocks.VerifierDouble{}, HTTP: testHTTPConfig()})(inner)

		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/user/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Content-Type-Options"))
		assert.Empty(t, rec.Header().Get("X-Frame-Options"))
	})
}

type resettingLimiterDouble struct {
	limiterDouble
	resets []string
}

func (l *resettingLimiterDouble) Reset(_ context.Context, key string) error {
	l.resets = append(l.resets, key)
	return nil
}

func TestThrottle(t *testing.T) {
	t.Run("allowed requests pass through keyed by IP and path", func(t *testing.T) {
		limiter := &limiterDouble{allow: func(context.Context, string) (bool, error) {
			return true, nil
		}}
		next, called := okHandler()
		handler := Throttle(limiter, nil)(next.ServeHTTP)

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = "203.0.113.9:51234"
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
		require.Len(t, limiter.keys, 1)
		assert.Equal(t, "203.0.113.9 /v1/auth/login", limiter.keys[0])
	})

	t.Run("over the limit is 429 Too many requests", func(t *testing.T) {
		limiter := &limiterDouble{allow: func(context.Context, string) (bool, error) {
			return false, nil
		}}
		next, called := okHandler()
		handler := Throttle(limiter, nil)(next.ServeHTTP)

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.False(t, *called)
		assert.Equal(t, map[string]string{"message": "Too many requests"}, decodeErrorBody(t, rec))
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		limiter := &limiterDouble{allow: func(context.Context, string) (bool, error) {
			return false, context.DeadlineExceeded
		}}
		next, called := okHandler()
		handler := Throttle(limiter, nil)(next.ServeHTTP)

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
	})

	t.Run("X-Forwarded-For first hop wins", func(t *testing.T) {
		limiter := &limiterDouble{allow: func(context.Context, string) (bool, error) {
			return true, nil
		}}
		next, _ := okHandler()
		handler := Throttle(limiter, nil)(next.ServeHTTP)

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Len(t, limiter.keys, 1)
		assert.Equal(t, "198.51.100.7 /v1/auth/login", limiter.keys[0])
	})

	t.Run("success clears the counter", func(t *testing.T) {
		limiter := &resettingLimiterDouble{
			limiterDouble: limiterDouble{allow: func(context.Context, string) (bool, error) {
				return true, nil
			}},
		}
		next, _ := okHandler()
		handler := Throttle(limiter, nil)(next.ServeHTTP)

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = "203.0.113.9:51234"
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Len(t, limiter.resets, 1)
		assert.Equal(t, "203.0.113.9 /v1/auth/login", limiter.resets[0])
	})

	t.Run("failed attempt keeps the counter", func(t *testing.T) {
		limiter := &resettingLimiterDouble{
			limiterDouble: limiterDouble{allow: func(context.Context, string) (bool, error) {
				return true, nil
			}},
		}
		next := func(w http.ResponseWriter, _ *http.Request) {
			WriteError(w, http.StatusUnauthorized, "Bad credentials")
		}
		handler := Throttle(limiter, nil)(next)

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, limiter.resets)
	})
}

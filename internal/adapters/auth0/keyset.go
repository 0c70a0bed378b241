package auth0

// Package auth0 provides identity-provider adapters: signing key retrieval,
// access token verification, and the authentication/management API client.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"golang.org/x/sync/singleflight"
)

// ErrKeySourceUnavailable indicates the JWKS endpoint could not be reached and
// no cached copy exists.
var ErrKeySourceUnavailable = errors.New("signing key source unavailable")

// ErrUnknownSigningKey indicates the token's key id is not present in the
// current signing key set.
var ErrUnknownSigningKey = errors.New("unknown signing key")

// KeySetCacheOptions configure a KeySetCache.
type KeySetCacheOptions struct {
	// URL is the JWKS endpoint, e.g. "https://<domain>/.well-known/jwks.json".
	URL string

	// RefreshInterval bounds how long a fetched key set is reused. Zero
	// disables refresh and keeps the first successful fetch for the process
	// lifetime.
	RefreshInterval time.Duration

	// HTTPClient is optional; defaults to a client with a 10s timeout.
	HTTPClient *http.Client

	// Logger is optional.
	Logger *slog.Logger
}

// KeySetCache fetches and caches the identity provider's signing key set.
//
// The first fill is single-flighted so concurrent first requests trigger one
// outbound fetch. After a successful fetch the set is reused until
// RefreshInterval elapses; a failed refresh serves the stale set rather than
// failing requests.
type KeySetCache struct {
	url             string
	refreshInterval time.Duration
	client          *http.Client
	logger          *slog.Logger

	group singleflight.Group

	mu        sync.RWMutex
	keys      *jose.JSONWebKeySet
	fetchedAt time.Time
}

// NewKeySetCache constructs a KeySetCache.
func NewKeySetCache(opts KeySetCacheOptions) (*KeySetCache, error) {
	if opts.URL == "" {
		return nil, errors.New("JWKS URL is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &KeySetCache{
		url:             opts.URL,
		refreshInterval: opts.RefreshInterval,
		client:          client,
		logger:          logger.With("component", "keyset_cache"),
	}, nil
}

// Get returns the current signing key set, fetching it if the cache is empty
// or stale. A stale cached set is served when a refresh fails.
func (c *KeySetCache) Get(ctx context.Context) (*jose.JSONWebKeySet, error) {
	if keys, fresh := c.cached(); keys != nil && fresh {
		return keys, nil
	}

	v, err, _ := c.group.Do("jwks", func() (any, error) {
		// Re-check under the flight: another caller may have just filled it.
		if keys, fresh := c.cached(); keys != nil && fresh {
			return keys, nil
		}
		return c.fetch(ctx)
	})
	if err != nil {
		if keys, _ := c.cached(); keys != nil {
			c.logger.WarnContext(ctx, "serving stale signing key set after refresh failure", "error", err)
			return keys, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrKeySourceUnavailable, err)
	}
	keys, ok := v.(*jose.JSONWebKeySet)
	if !ok {
		return nil, errors.New("unexpected key set type")
	}
	return keys, nil
}

// KeyByID resolves a verification key by its key identifier. Returns
// ErrUnknownSigningKey when the id is absent from the current set.
func (c *KeySetCache) KeyByID(ctx context.Context, kid string) (any, error) {
	keys, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	matches := keys.Key(kid)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: kid %q", ErrUnknownSigningKey, kid)
	}
	return matches[0].Key, nil
}

// ForceRefresh drops the cached set and fetches a fresh copy.
func (c *KeySetCache) ForceRefresh(ctx context.Context) error {
	c.mu.Lock()
	c.keys = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()

	_, err := c.Get(ctx)
	return err
}

// cached returns the cached set and whether it is still fresh.
func (c *KeySetCache) cached() (*jose.JSONWebKeySet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.keys == nil {
		return nil, false
	}
	if c.refreshInterval <= 0 {
		return c.keys, true
	}
	return c.keys, time.Since(c.fetchedAt) < c.refreshInterval
}

func (c *KeySetCache) fetch(ctx context.Context) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build JWKS request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch JWKS: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("close JWKS response body", "error", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch JWKS: unexpected status %d", resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if decodeErr := json.NewDecoder(resp.Body).Decode(&set); decodeErr != nil {
		return nil, fmt.Errorf("decode JWKS: %w", decodeErr)
	}
	if len(set.Keys) == 0 {
		return nil, errors.New("JWKS contains no keys")
	}

	c.mu.Lock()
	c.keys = &set
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "signing key set refreshed", "keys", len(set.Keys))
	return &set, nil
}

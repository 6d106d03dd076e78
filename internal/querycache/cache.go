// Package querycache is the read-through cache in front of the API's GET
// endpoints. Mutations drop every key under the affected resources. Entries
// are scoped to one session; without a scope nothing is cached.
package querycache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// DefaultTTL bounds how stale a cached read may get between mutations
const DefaultTTL = 5 * time.Minute

// Store is a byte-oriented key/value backend with TTLs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}

type Cache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
	scope  func() string
}

type Option func(*Cache)

// WithScope namespaces every key under scope(). An empty scope bypasses the
// cache, so anonymous reads always reach the backend.
func WithScope(scope func() string) Option {
	return func(c *Cache) { c.scope = scope }
}

func New(store Store, ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{store: store, ttl: ttl, logger: logger, scope: func() string { return "shared" }}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key joins a resource name with the request-specific parts.
func Key(resource string, parts ...string) string {
	return resource + ":" + strings.Join(parts, ":")
}

// Load returns the cached value for key or calls fetch and stores the result.
// A nil Cache, or any cache failure, falls through to fetch.
func Load[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fetch(ctx)
	}
	scope := c.scope()
	if scope == "" {
		return fetch(ctx)
	}
	key = scope + ":" + key

	if raw, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			c.logger.Debug("cache hit", "key", key)
			return v, nil
		}
		c.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return v, nil
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return v, nil
}

// Invalidate drops all keys of the named resources.
func (c *Cache) Invalidate(ctx context.Context, resources ...string) {
	if c == nil {
		return
	}
	scope := c.scope()
	if scope == "" {
		return
	}
	for _, r := range resources {
		if err := c.store.DeletePrefix(ctx, scope+":"+r+":"); err != nil {
			c.logger.Warn("cache invalidation failed", "resource", r, "error", err)
		}
	}
}

// Purge drops every entry of every scope. It runs whenever the credentials change.
func (c *Cache) Purge(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("cache purge failed", "error", err)
	}
}

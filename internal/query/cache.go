package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/DukeRupert/youkai/internal/metrics"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "youkai:query:"

// Cache stores encoded query results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// =============================================================================
// Memory cache
// =============================================================================

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	items *cache.Cache
}

// NewMemoryCache creates an in-process cache that purges expired entries
// every cleanup interval.
func NewMemoryCache(defaultTTL, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{items: cache.New(defaultTTL, cleanup)}
}

// Get returns the value stored at key.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

// Set stores value at key for ttl.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.items.Set(key, value, ttl)
	return nil
}

// =============================================================================
// Redis cache
// =============================================================================

// RedisCache is a Cache shared between server instances.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache creates a cache over client.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the value stored at key.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores value at key for ttl.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// =============================================================================
// Caching store decorator
// =============================================================================

// Cached wraps a Store and caches the reads that do not take part in
// pagination: Count, Slugs, BySlug and Related. Page, search and neighbor
// queries always reach the underlying store.
type Cached struct {
	Store
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached decorates store with cache.
func NewCached(store Store, c Cache, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{
		Store:  store,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Count returns the cached artwork count.
func (c *Cached) Count(ctx context.Context) (int, error) {
	return remember(ctx, c, "count", cacheKey("count"), func() (int, error) {
		return c.Store.Count(ctx)
	})
}

// Slugs returns the cached slug list.
func (c *Cached) Slugs(ctx context.Context) ([]string, error) {
	return remember(ctx, c, "slugs", cacheKey("slugs"), func() ([]string, error) {
		return c.Store.Slugs(ctx)
	})
}

// BySlug returns the cached artwork for slug. Misses are not cached.
func (c *Cached) BySlug(ctx context.Context, slug string) (*domain.Artwork, error) {
	return remember(ctx, c, "by_slug", cacheKey("slug", slug), func() (*domain.Artwork, error) {
		return c.Store.BySlug(ctx, slug)
	})
}

// Related returns the cached related artworks.
func (c *Cached) Related(ctx context.Context, tags []string, excludeID string, limit int) ([]domain.Artwork, error) {
	key := cacheKey("related", excludeID, fmt.Sprint(limit), strings.Join(tags, ","))
	return remember(ctx, c, "related", key, func() ([]domain.Artwork, error) {
		return c.Store.Related(ctx, tags, excludeID, limit)
	})
}

func cacheKey(parts ...string) string {
	return keyPrefix + strings.Join(parts, ":")
}

// remember returns the cached value at key, loading and storing it on a miss.
// Cache failures are logged and fall through to the store.
func remember[T any](ctx context.Context, c *Cached, kind, key string, load func() (T, error)) (T, error) {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("query cache read failed", "kind", kind, "error", err)
	}
	if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.CacheLookup(kind, true)
			return v, nil
		}
		c.logger.Warn("query cache entry corrupt", "kind", kind, "key", key)
	}
	metrics.CacheLookup(kind, false)

	v, err := load()
	if err != nil {
		return v, err
	}
	if isNil(v) {
		return v, nil
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("query cache encode failed", "kind", kind, "error", err)
		return v, nil
	}
	if err := c.cache.Set(ctx, key, encoded, c.ttl); err != nil {
		c.logger.Warn("query cache write failed", "kind", kind, "error", err)
	}
	return v, nil
}

func isNil(v any) bool {
	switch t := v.(type) {
	case *domain.Artwork:
		return t == nil
	default:
		return false
	}
}

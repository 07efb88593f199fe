package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// CACHE - Read-through cache for point lookups
// =============================================================================

// Cache is a string key/value cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedCatalog serves point lookups from a Cache, falling back to the
// wrapped Catalog. Cache failures are logged and never fail a lookup.
// Listing methods always go to the source.
//
// Keys carry a generation number; Invalidate moves to a new generation so
// entries written before a dataset change are never read again.
type CachedCatalog struct {
	Catalog
	cache      Cache
	ttl        time.Duration
	logger     *zap.Logger
	generation atomic.Uint64
}

// NewCachedCatalog wraps source with cache.
func NewCachedCatalog(source Catalog, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &CachedCatalog{Catalog: source, cache: cache, ttl: ttl, logger: logger}
	// Entries left in a shared cache by an earlier process are not trusted.
	c.generation.Store(uint64(time.Now().UnixNano()))
	return c
}

// Invalidate drops every cached entry.
func (c *CachedCatalog) Invalidate() {
	c.generation.Add(1)
}

// GetCollege implements Catalog.
func (c *CachedCatalog) GetCollege(ctx context.Context, name string) (*College, error) {
	return readThrough(ctx, c, "college:"+NormalizeCollege(name), func() (*College, error) {
		return c.Catalog.GetCollege(ctx, name)
	})
}

// GetSalary implements Catalog.
func (c *CachedCatalog) GetSalary(ctx context.Context, major, state string) (*Salary, error) {
	key := fmt.Sprintf("salary:%s:%s", NormalizeMajor(major), NormalizeState(state))
	return readThrough(ctx, c, key, func() (*Salary, error) {
		return c.Catalog.GetSalary(ctx, major, state)
	})
}

// GetStateTax implements Catalog.
func (c *CachedCatalog) GetStateTax(ctx context.Context, state string) (*StateTax, error) {
	return readThrough(ctx, c, "state_tax:"+NormalizeState(state), func() (*StateTax, error) {
		return c.Catalog.GetStateTax(ctx, state)
	})
}

// cachedMiss marks a record known to be absent.
const cachedMiss = "null"

func readThrough[T any](ctx context.Context, c *CachedCatalog, key string, load func() (*T, error)) (*T, error) {
	key = fmt.Sprintf("v%d:%s", c.generation.Load(), key)
	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		if raw == cachedMiss {
			return nil, nil
		}
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return &v, nil
		}
		c.logger.Warn("catalog cache entry unreadable", zap.String("key", key))
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	raw := cachedMiss
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return v, nil
		}
		raw = string(b)
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

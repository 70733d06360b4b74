package fabric

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fabvis/fabvis/pkg/util"
)

// CacheTTL bounds how stale cached testbed resource data may get. Site
// availability and metrics change slowly; five minutes keeps portal views
// responsive without hammering the control framework.
const CacheTTL = 5 * time.Minute

const (
	cacheKeySites   = "fabvis:sites"
	cacheKeyMetrics = "fabvis:metrics:"
)

// Cache is a Redis-backed store for slow-changing testbed data. All methods
// degrade gracefully: a cache miss or Redis outage is reported as an error
// the caller should treat as "fetch fresh", never as fatal.
type Cache struct {
	client *redis.Client
}

// NewCache connects to Redis at the given address. The connection is
// verified eagerly so misconfiguration surfaces at startup.
func NewCache(ctx context.Context, addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Cache{client: client}, nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Sites returns the cached site list, or ErrNotFound on a miss.
func (c *Cache) Sites(ctx context.Context) ([]Site, error) {
	data, err := c.client.Get(ctx, cacheKeySites).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("site cache: %w", util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("site cache read: %w", err)
	}
	var sites []Site
	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("site cache decode: %w", err)
	}
	return sites, nil
}

// StoreSites caches the site list for CacheTTL.
func (c *Cache) StoreSites(ctx context.Context, sites []Site) error {
	data, err := json.Marshal(sites)
	if err != nil {
		return fmt.Errorf("site cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKeySites, data, CacheTTL).Err(); err != nil {
		return fmt.Errorf("site cache write: %w", err)
	}
	return nil
}

// Metrics returns cached metrics for a site, or ErrNotFound on a miss.
func (c *Cache) Metrics(ctx context.Context, site string) (*SiteMetrics, error) {
	data, err := c.client.Get(ctx, cacheKeyMetrics+site).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("metrics cache for '%s': %w", site, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("metrics cache read: %w", err)
	}
	var m SiteMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("metrics cache decode: %w", err)
	}
	return &m, nil
}

// StoreMetrics caches one site's metrics for CacheTTL.
func (c *Cache) StoreMetrics(ctx context.Context, site string, m *SiteMetrics) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("metrics cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKeyMetrics+site, data, CacheTTL).Err(); err != nil {
		return fmt.Errorf("metrics cache write: %w", err)
	}
	return nil
}

// CachedController wraps a Controller and serves ListSites from the cache
// when possible. Topology operations pass through untouched.
type CachedController struct {
	Controller
	cache *Cache
}

// WithCache layers a site cache over a controller.
func WithCache(ctrl Controller, cache *Cache) *CachedController {
	return &CachedController{Controller: ctrl, cache: cache}
}

// ListSites serves from cache, falling back to the controller and
// repopulating on a miss. Cache failures are logged, not propagated.
func (c *CachedController) ListSites(ctx context.Context) ([]Site, error) {
	if sites, err := c.cache.Sites(ctx); err == nil {
		return sites, nil
	}
	sites, err := c.Controller.ListSites(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.StoreSites(ctx, sites); err != nil {
		util.Logger.WithError(err).Warn("Failed to cache site list")
	}
	return sites, nil
}

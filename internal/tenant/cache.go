package tenant

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultCacheTTL           = 5 * time.Minute
	DefaultCacheHighWaterMark = 1000
)

// Clock returns the current time.
type Clock func() time.Time

// CacheKey identifies a resolution.
type CacheKey struct {
	Domain string
	Path   string
}

func (k CacheKey) String() string {
	return k.Domain + "\x00" + k.Path
}

type cacheEntry struct {
	value     DomainContext
	createdAt time.Time
}

// Cache keeps resolved contexts for a limited time. Stale entries are
// ignored by Get and only removed once the number of entries crosses the
// high-water mark. Safe for concurrent use.
type Cache struct {
	items         *gocache.Cache
	ttl           time.Duration
	highWaterMark int
	now           Clock
}

// NewCache creates a cache. Non-positive ttl and highWaterMark and a nil
// clock fall back to the defaults.
func NewCache(ttl time.Duration, highWaterMark int, now Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if highWaterMark <= 0 {
		highWaterMark = DefaultCacheHighWaterMark
	}
	if now == nil {
		now = time.Now
	}

	return &Cache{
		// expiry is judged against the injected clock, go-cache only stores
		items:         gocache.New(gocache.NoExpiration, 0),
		ttl:           ttl,
		highWaterMark: highWaterMark,
		now:           now,
	}
}

// Get returns the live entry for key.
func (c *Cache) Get(key CacheKey) (DomainContext, bool) {
	v, ok := c.items.Get(key.String())
	if !ok {
		return DomainContext{}, false
	}

	entry := v.(cacheEntry)
	if c.stale(entry, c.now()) {
		return DomainContext{}, false
	}

	return entry.value.clone(), true
}

// Put stores value under key, then gives MaybeEvict a chance to run.
func (c *Cache) Put(key CacheKey, value DomainContext) {
	c.items.Set(key.String(), cacheEntry{value: value.clone(), createdAt: c.now()}, gocache.NoExpiration)
	c.MaybeEvict()
}

// MaybeEvict removes stale entries when the cache holds more than the
// high-water mark. It returns the number of removed entries.
func (c *Cache) MaybeEvict() int {
	if c.items.ItemCount() <= c.highWaterMark {
		return 0
	}

	now := c.now()
	removed := 0
	for k, item := range c.items.Items() {
		if c.stale(item.Object.(cacheEntry), now) {
			c.items.Delete(k)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, stale ones included.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

func (c *Cache) stale(e cacheEntry, now time.Time) bool {
	return now.Sub(e.createdAt) > c.ttl
}

// Package cache stores finished generation results keyed by request
// fingerprint, so revisiting a page (back/forward, tab switch, repeat
// lookup) renders instantly instead of re-generating.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jama7777/Inifinite-wiki/internal/session"
	"github.com/jama7777/Inifinite-wiki/internal/topic"
)

// purgeInterval is how often expired entries are swept when a TTL is set.
const purgeInterval = 10 * time.Minute

// Entry is one cached generation result. Only complete, successful
// generations are cached; partial or failed output never enters the cache.
type Entry struct {
	Content  string
	Sources  []session.Source
	Elapsed  time.Duration
	Language string
}

// Cache is a fingerprint-keyed result cache. The zero TTL means entries
// never expire and live for the process lifetime.
type Cache struct {
	inner *gocache.Cache
}

// New creates a Cache. ttl <= 0 disables expiration.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{inner: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Cache{inner: gocache.New(ttl, purgeInterval)}
}

// Get returns the cached entry for fp, if present.
func (c *Cache) Get(fp topic.Fingerprint) (Entry, bool) {
	v, ok := c.inner.Get(string(fp))
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// Put stores a completed generation result. Re-putting the same
// fingerprint overwrites, which is harmless: identical requests produce
// interchangeable entries.
func (c *Cache) Put(fp topic.Fingerprint, e Entry) {
	c.inner.Set(string(fp), e, gocache.DefaultExpiration)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.inner.ItemCount()
}

// Package cache provides a TTL-bounded, environment-keyed store for
// resolved configuration bundles.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
)

// entry is an immutable snapshot; entries are replaced, never mutated.
type entry struct {
	bundle     models.ConfigBundle
	capturedAt time.Time
}

// Cache holds configuration snapshots per environment. Reads of an entry
// older than the TTL behave as misses; expired entries are removed lazily
// on read with no background sweep.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a Cache with the given TTL.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached bundle for the environment and whether it was a
// hit. An expired entry is deleted and reported as a miss.
func (c *Cache) Get(env models.Environment) (models.ConfigBundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[string(env)]
	if !ok {
		return models.ConfigBundle{}, false
	}
	if c.now().Sub(e.capturedAt) >= c.ttl {
		delete(c.entries, string(env))
		return models.ConfigBundle{}, false
	}
	return e.bundle, true
}

// Put stores a bundle snapshot for the environment, replacing any previous
// entry.
func (c *Cache) Put(env models.Environment, bundle models.ConfigBundle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[string(env)] = entry{bundle: bundle, capturedAt: c.now()}
}

// Invalidate removes the entry for the environment, if present.
func (c *Cache) Invalidate(env models.Environment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, string(env))
}

// InvalidateContaining removes every entry whose key contains the substring.
func (c *Cache) InvalidateContaining(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if strings.Contains(k, substr) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// ClearAll removes every entry.
func (c *Cache) ClearAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]entry)
	return n
}

// Size reports the number of stored entries, including any not yet expired
// lazily.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

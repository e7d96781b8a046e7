package price

import (
	"fmt"
	"sync"
	"time"

	"github.com/folioworks/folio/internal/domain"
)

// cacheState reports what the cache knows about a key.
type cacheState int

const (
	cacheMiss cacheState = iota // nothing cached (or expired)
	cacheHit                    // fresh quote available
	cacheNegative               // resolution recently failed for this key
)

type cacheEntry struct {
	quote     domain.Quote
	negative  bool
	expiresAt time.Time
}

// Cache is the shared short-TTL quote cache keyed by (symbol, currency).
// Failed resolutions are cached too, under a shorter TTL and a distinct
// flag, so a consistently-unresolvable symbol does not hammer providers and
// never masquerades as a zero price. Entries update atomically under the
// lock; an expired entry is never returned.
type Cache struct {
	mu          sync.RWMutex
	entries     map[string]cacheEntry
	ttl         time.Duration
	negativeTTL time.Duration
	now         func() time.Time
}

// NewCache creates a quote cache. ttl bounds positive entries, negativeTTL
// bounds cached failures.
func NewCache(ttl, negativeTTL time.Duration) *Cache {
	return &Cache{
		entries:     make(map[string]cacheEntry),
		ttl:         ttl,
		negativeTTL: negativeTTL,
		now:         time.Now,
	}
}

func cacheKey(symbol, currency string) string {
	return fmt.Sprintf("%s:%s", symbol, currency)
}

func (c *Cache) get(key string) (domain.Quote, cacheState) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return domain.Quote{}, cacheMiss
	}
	if entry.negative {
		return domain.Quote{}, cacheNegative
	}
	return entry.quote, cacheHit
}

func (c *Cache) set(key string, quote domain.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		quote:     quote,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *Cache) setNegative(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		negative:  true,
		expiresAt: c.now().Add(c.negativeTTL),
	}
}

// Invalidate drops every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

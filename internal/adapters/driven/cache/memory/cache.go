// Package memory provides an in-process LRU implementation of driven.ResultCache.
package memory

import (
	"container/list"
	"sync"
	"time"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.ResultCache = (*Cache)(nil)

type item struct {
	key   domain.CacheKey
	entry domain.CacheEntry
}

// Cache is a least-recently-used result cache. When an insert pushes the
// size past capacity, the least recently used half is evicted in one batch.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is most recent
	items    map[domain.CacheKey]*list.Element
	now      func() time.Time

	hits      int64
	misses    int64
	evictions int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for StoredAt.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a cache holding at most capacity entries.
// A capacity of zero or less disables caching.
func New(capacity int, opts ...Option) *Cache {
	if capacity < 0 {
		capacity = 0
	}
	c := &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[domain.CacheKey]*list.Element),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns a copy of the entry for key. A hit increments the entry's
// hit count, refreshes StoredAt and marks it most recently used.
func (c *Cache) Lookup(key domain.CacheKey) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return domain.CacheEntry{}, false
	}
	c.hits++
	it := el.Value.(*item)
	it.entry.Hits++
	it.entry.StoredAt = c.now()
	c.order.MoveToFront(el)
	return copyEntry(it.entry), true
}

// Insert stores a copy of entry under key.
func (c *Cache) Insert(key domain.CacheKey, entry domain.CacheEntry) {
	if c.capacity == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry = copyEntry(entry)
	entry.StoredAt = c.now()

	if el, ok := c.items[key]; ok {
		it := el.Value.(*item)
		entry.Hits = it.entry.Hits
		it.entry = entry
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&item{key: key, entry: entry})
	if c.order.Len() > c.capacity {
		c.evictHalf()
	}
}

// evictHalf drops the least recently used half of the entries.
// Callers must hold c.mu.
func (c *Cache) evictHalf() {
	n := c.order.Len() / 2
	if n == 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		el := c.order.Back()
		if el == nil {
			return
		}
		c.order.Remove(el)
		delete(c.items, el.Value.(*item).key)
		c.evictions++
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns the cache counters.
func (c *Cache) Stats() domain.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CacheStats{
		Size:      c.order.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Clear removes every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[domain.CacheKey]*list.Element)
}

func copyEntry(e domain.CacheEntry) domain.CacheEntry {
	if e.Unrecognized != nil {
		e.Unrecognized = append([]string(nil), e.Unrecognized...)
	}
	if e.Errors != nil {
		e.Errors = append([]string(nil), e.Errors...)
	}
	return e
}

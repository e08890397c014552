package cache

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache bounds rendered views by count and age. Recency is tracked by the
// underlying golang-lru cache; expiry is checked lazily on Get and in bulk by
// CleanExpired.
type LRUCache[T any] struct {
	entries *lru.Cache[string, entry[T]]
	ttl     time.Duration
	now     func() time.Time

	// serialises GetOrCompute so one selection is rendered once per miss
	computeMu sync.Mutex

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// NewLRUCache returns a cache holding at most maxSize entries for ttl each.
// A maxSize below one is raised to one.
func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	entries, _ := lru.New[string, entry[T]](maxSize) // only fails for size <= 0
	return &LRUCache[T]{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *LRUCache[T]) expired(e entry[T], now time.Time) bool {
	return now.Sub(e.storedAt) > c.ttl
}

// Get returns the live value for key, dropping it if it has aged out.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	e, ok := c.entries.Get(key)
	if ok && c.expired(e, c.now()) {
		c.entries.Remove(key)
		ok = false
	}
	if !ok {
		c.misses.Add(1)
		var zero T
		return zero, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry when full.
func (c *LRUCache[T]) Set(key string, value T) {
	c.entries.Add(key, entry[T]{value: value, storedAt: c.now()})
}

// GetOrCompute returns the cached value for key, or computes and stores it.
// Errors from compute are returned and nothing is cached.
func (c *LRUCache[T]) GetOrCompute(key string, compute func() (T, error)) (T, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	c.computeMu.Lock()
	defer c.computeMu.Unlock()
	if e, ok := c.entries.Peek(key); ok && !c.expired(e, c.now()) {
		return e.value, true, nil
	}

	v, err := compute()
	if err != nil {
		var zero T
		return zero, false, err
	}
	c.Set(key, v)
	return v, false, nil
}

func (c *LRUCache[T]) Delete(key string) {
	c.entries.Remove(key)
}

// CleanExpired removes every aged-out entry and reports how many went.
func (c *LRUCache[T]) CleanExpired() int {
	now := c.now()
	removed := 0
	for _, key := range c.entries.Keys() {
		if e, ok := c.entries.Peek(key); ok && c.expired(e, now) {
			if c.entries.Remove(key) {
				removed++
			}
		}
	}
	return removed
}

func (c *LRUCache[T]) Size() int {
	return c.entries.Len()
}

// Stats returns cumulative hit and miss counts.
func (c *LRUCache[T]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

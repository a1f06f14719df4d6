package cache

import (
	"sync"
	"time"
)

// Entry is one cached payload and the instant it stops being served
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// TTLCache is a concurrency-safe map with per-entry expiry.
// Entries are replaced wholesale on Set and never mutated in place; two
// requests that miss together both compute and the last Set wins.
type TTLCache[V any] struct {
	name    string
	mu      sync.RWMutex
	entries map[string]Entry[V]
	now     func() time.Time
}

// NewTTLCache creates an empty cache. The name labels its metrics.
func NewTTLCache[V any](name string) *TTLCache[V] {
	return &TTLCache[V]{
		name:    name,
		entries: make(map[string]Entry[V]),
		now:     time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (c *TTLCache[V]) WithClock(now func() time.Time) *TTLCache[V] {
	c.now = now
	return c
}

// Name returns the metrics label of the cache
func (c *TTLCache[V]) Name() string {
	return c.name
}

// Get returns the live value stored under key
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.ExpiresAt) {
		cacheMisses.WithLabelValues(c.name).Inc()
		var zero V
		return zero, false
	}

	cacheHits.WithLabelValues(c.name).Inc()
	return entry.Value, true
}

// Set stores value under key until ttl elapses
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	entry := Entry[V]{Value: value, ExpiresAt: c.now().Add(ttl)}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Sweep removes expired entries and returns how many were removed
func (c *TTLCache[V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		cacheSwept.WithLabelValues(c.name).Add(float64(removed))
	}
	return removed
}

// Len returns the number of stored entries, expired or not
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

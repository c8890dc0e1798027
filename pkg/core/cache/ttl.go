// Package cache provides an in-memory TTL cache plus the key-building
// helpers for the board snapshot and response caches. The process holds two
// independent instances (constructed once in cmd/server and passed down);
// swapping either for Redis only requires replacing this package.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe key-value store with per-key expiry. Expired
// entries are lazily evicted on access and can be swept via PurgeExpired.
// There is no size-based eviction; only time-based expiry.
type TTLCache[V any] struct {
	mu         sync.Mutex
	store      map[string]entry[V]
	defaultTTL time.Duration
}

// Stats reports entry counts at the instant of the call.
type Stats struct {
	TotalEntries int `json:"total_entries"`
	Alive        int `json:"alive"`
	Expired      int `json:"expired"`
}

// New creates a cache whose Set uses defaultTTL.
func New[V any](defaultTTL time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		store:      make(map[string]entry[V]),
		defaultTTL: defaultTTL,
	}
}

// Get returns the cached value, or the zero value and false if the key is
// missing or expired. An expired entry is removed under the same lock so a
// concurrent refresh cannot race the eviction.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store[key]
	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.store, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the instance default TTL.
func (c *TTLCache[V]) Set(key string, value V) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *TTLCache[V]) SetTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes a single key and reports whether it existed.
func (c *TTLCache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	delete(c.store, key)
	return ok
}

// Clear drops every entry and returns the count removed.
func (c *TTLCache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.store)
	c.store = make(map[string]entry[V])
	return n
}

// PurgeExpired removes every expired entry and returns the count purged.
// Live keys are untouched.
func (c *TTLCache[V]) PurgeExpired() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	purged := 0
	for k, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, k)
			purged++
		}
	}
	return purged
}

// Has reports whether a non-expired entry exists for key.
func (c *TTLCache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Stats returns total/alive/expired entry counts.
func (c *TTLCache[V]) Stats() Stats {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{TotalEntries: len(c.store)}
	for _, e := range c.store {
		if !now.After(e.expiresAt) {
			s.Alive++
		}
	}
	s.Expired = s.TotalEntries - s.Alive
	return s
}

package cache

import (
	"sync"
	"time"
)

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe map whose entries expire after a fixed duration.
// Expired entries are evicted lazily on the next Get for their key.
type TTLCache[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]ttlEntry[V]
	ttl   time.Duration

	ttlFunc func(V) time.Duration
	now     func() time.Time
}

// Option configures a TTLCache.
type Option[K comparable, V any] func(*TTLCache[K, V])

// WithTTLFunc installs a per-value TTL policy. A non-positive return value
// falls back to the cache default.
func WithTTLFunc[K comparable, V any](fn func(V) time.Duration) Option[K, V] {
	return func(c *TTLCache[K, V]) {
		if fn != nil {
			c.ttlFunc = fn
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *TTLCache[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a TTLCache with the given default entry lifetime.
// The TTL must be positive, otherwise it panics.
func New[K comparable, V any](ttl time.Duration, opts ...Option[K, V]) *TTLCache[K, V] {
	if ttl <= 0 {
		panic("cache TTL must be positive")
	}
	c := &TTLCache[K, V]{
		items: make(map[K]ttlEntry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key if present and unexpired. An expired entry is
// removed and reported as absent.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores the value under key, overwriting unconditionally and restarting
// the entry's lifetime.
func (c *TTLCache[K, V]) Put(key K, value V) {
	ttl := c.ttl
	if c.ttlFunc != nil {
		if d := c.ttlFunc(value); d > 0 {
			ttl = d
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = ttlEntry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Delete removes the entry for key, reporting whether one existed.
func (c *TTLCache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	delete(c.items, key)
	return ok
}

// Len returns the number of stored entries, including any that have expired
// but were not yet looked up.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]ttlEntry[V])
}

package cache

import (
	"sync"
	"time"
)

// entry is a single stored value with its expiry metadata.
type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
}

// Cache is a bounded, TTL-expiring key/value store with strict FIFO
// eviction. All methods are safe for concurrent use. State is owned by
// the instance; independent caches never share entries or counters.
type Cache struct {
	cfg Config

	mu      sync.Mutex
	entries map[string]*entry
	// order holds keys in insertion order; index 0 is the eviction victim.
	order     []string
	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache with the given configuration.
func New(cfg Config) *Cache {
	cfg.ApplyDefaults()
	return &Cache{
		cfg:     cfg,
		entries: make(map[string]*entry),
		order:   make([]string, 0, cfg.MaxEntries),
	}
}

// Get returns the value stored under key. An entry older than its TTL is
// treated as absent and removed. Every call counts as a hit or a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if time.Since(e.storedAt) > e.ttl {
		c.remove(key)
		c.misses++
		return nil, false
	}

	c.hits++
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.cfg.MaxAge)
}

// SetWithTTL stores value under key with an explicit TTL. When the cache
// is full, the earliest-inserted entry is evicted first. Overwriting an
// existing key re-inserts it at the back of the eviction order.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.MaxAge
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	for len(c.entries) >= c.cfg.MaxEntries && len(c.order) > 0 {
		c.remove(c.order[0])
		c.evictions++
	}

	c.entries[key] = &entry{value: value, storedAt: time.Now(), ttl: ttl}
	c.order = append(c.order, key)
}

// Delete removes the entry stored under key, reporting whether it existed.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	c.remove(key)
	return true
}

// Clear removes all entries and resets the hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.order = c.order[:0]
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   len(c.entries),
	}
}

// remove deletes key from the entry map and the insertion order.
// Callers must hold the mutex.
func (c *Cache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

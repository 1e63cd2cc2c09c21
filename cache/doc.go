// Package cache provides a bounded, TTL-expiring in-memory store for
// memoizing remote API results, keyed by a deterministic fingerprint of
// method name and parameters.
//
// Eviction is strict FIFO by insertion order: reads never promote an
// entry, so a key read a moment ago is not protected from eviction.
// Expiry is checked lazily on read.
//
//	c := cache.New(cache.Config{MaxAge: 5 * time.Minute, MaxEntries: 1000})
//	key := cache.BuildKey("getRepository", map[string]any{"owner": "o", "repo": "r"})
//	if v, ok := c.Get(key); ok { ... }
//	c.Set(key, result)
package cache

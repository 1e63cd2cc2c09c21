package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCache_GetMiss(t *testing.T) {
	c := New(Config{})

	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}

	stats := c.Stats()
	if stats.Misses != 1 || stats.Hits != 0 {
		t.Errorf("stats = %+v, want 1 miss, 0 hits", stats)
	}
}

func TestCache_SetGet(t *testing.T) {
	c := New(Config{})
	c.Set("k", 42)

	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if v != 42 {
		t.Errorf("value = %v, want 42", v)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 entry", stats)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(Config{})
	c.SetWithTTL("k", "v", 50*time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Error("expected hit before expiry")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed, len = %d", c.Len())
	}
}

func TestCache_FIFOEviction(t *testing.T) {
	c := New(Config{MaxEntries: 2})

	c.Set("k1", 1)
	c.Set("k2", 2)

	// A read must not promote k1: eviction order is insertion order.
	if _, ok := c.Get("k1"); !ok {
		t.Fatal("expected hit for k1")
	}

	c.Set("k3", 3)

	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should be evicted despite the recent read")
	}
	if _, ok := c.Get("k2"); !ok {
		t.Error("k2 should survive")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("k3 should survive")
	}
}

func TestCache_EvictionOverCapacity(t *testing.T) {
	c := New(Config{MaxEntries: 3})

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	for i := 7; i < 10; i++ {
		if _, ok := c.Get(fmt.Sprintf("k%d", i)); !ok {
			t.Errorf("expected k%d to be present", i)
		}
	}
	if c.Stats().Evictions != 7 {
		t.Errorf("evictions = %d, want 7", c.Stats().Evictions)
	}
}

func TestCache_OverwriteReinserts(t *testing.T) {
	c := New(Config{MaxEntries: 2})

	c.Set("k1", 1)
	c.Set("k2", 2)
	c.Set("k1", 10) // re-insert at the back of the order
	c.Set("k3", 3)  // evicts k2, now the oldest

	if _, ok := c.Get("k2"); ok {
		t.Error("k2 should be evicted after k1 was re-inserted")
	}
	if v, ok := c.Get("k1"); !ok || v != 10 {
		t.Errorf("k1 = %v, %v; want 10, true", v, ok)
	}
}

func TestCache_Delete(t *testing.T) {
	c := New(Config{})
	c.Set("k", 1)

	if !c.Delete("k") {
		t.Error("expected Delete to report existing key")
	}
	if c.Delete("k") {
		t.Error("expected Delete to report absent key")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(Config{})
	c.Set("k1", 1)
	c.Set("k2", 2)
	c.Get("k1")
	c.Get("absent")

	c.Clear()

	stats := c.Stats()
	if stats.Entries != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("stats after clear = %+v, want all zero", stats)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(Config{MaxEntries: 50})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%20)
			c.Set(key, i)
			c.Get(key)
			c.Stats()
		}(i)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("len = %d, want <= 50", c.Len())
	}
}

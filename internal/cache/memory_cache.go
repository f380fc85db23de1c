package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryCache is the in-process fallback used when Redis is not configured.
// It holds at most maxEntries values; when full, expired entries are swept
// and, if that frees nothing, the entry closest to expiry is evicted.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memEntry
	maxEntries int
	now        func() time.Time
}

type memEntry struct {
	data    []byte
	expires time.Time // zero: never
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryCache{
		entries:    make(map[string]memEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *MemoryCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.expired(c.now()) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) SetJSON(_ context.Context, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evict(now)
	}
	e := memEntry{data: b}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evict must be called with mu held.
func (c *MemoryCache) evict(now time.Time) {
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var victim string
	var soonest time.Time
	for k, e := range c.entries {
		if victim == "" || e.before(soonest) {
			victim, soonest = k, e.expires
		}
	}
	delete(c.entries, victim)
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// before orders entries by expiry; entries without one sort last.
func (e memEntry) before(t time.Time) bool {
	if e.expires.IsZero() {
		return false
	}
	return t.IsZero() || e.expires.Before(t)
}

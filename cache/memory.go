package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	translation string
	expires     time.Time // zero means the entry never expires
}

func (e memoryEntry) liveAt(t time.Time) bool {
	return e.expires.IsZero() || !t.After(e.expires)
}

// InMemoryCache keeps translations in a map for the lifetime of the
// process. It is safe for concurrent use.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryCache returns an empty cache whose entries live for
// ttlSeconds. A ttlSeconds of zero or less keeps entries forever.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	c := &InMemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	if ttlSeconds > 0 {
		c.ttl = time.Duration(ttlSeconds) * time.Second
	}
	return c
}

// Get returns the translation stored under key. Expired entries are
// evicted on read.
func (c *InMemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if e.liveAt(c.now()) {
		return e.translation, true
	}

	c.mu.Lock()
	if cur, ok := c.entries[key]; ok && !cur.liveAt(c.now()) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return "", false
}

// Set stores translation under key, restarting its TTL.
func (c *InMemoryCache) Set(_ context.Context, key string, translation string) error {
	e := memoryEntry{translation: translation}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, counting expired ones that
// have not been evicted yet.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}

// Entries returns a snapshot of the live entries.
func (c *InMemoryCache) Entries(_ context.Context) (map[string]string, error) {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.entries))
	for key, e := range c.entries {
		if e.liveAt(now) {
			out[key] = e.translation
		}
	}
	return out, nil
}

var _ ExportableCache = (*InMemoryCache)(nil)

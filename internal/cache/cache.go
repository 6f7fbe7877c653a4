// Package cache holds recently fetched source documents so that reloads in
// quick succession do not refetch every document.
package cache

import (
	"strings"
	"sync"
	"time"
)

// CachedDocument is a fetched document body.
type CachedDocument struct {
	URL       string
	Body      []byte
	FetchedAt time.Time
}

// entry wraps a cached document with expiry and insertion order tracking.
type entry struct {
	doc       *CachedDocument
	expiry    time.Time
	insertIdx int64
}

// DocumentCache is a bounded TTL cache keyed by document URL.
// A zero TTL disables caching: Get always misses and Set is a no-op.
type DocumentCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
	now        func() time.Time
}

// New creates a DocumentCache with the given TTL and max entry count.
func New(ttl time.Duration, maxEntries int) *DocumentCache {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	return &DocumentCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Enabled reports whether the cache stores anything.
func (c *DocumentCache) Enabled() bool {
	return c != nil && c.ttl > 0
}

// Get returns a cached document if found and not expired.
func (c *DocumentCache) Get(url string) (*CachedDocument, bool) {
	if !c.Enabled() {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.items[url]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().After(e.expiry) {
		c.mu.Lock()
		if e2, ok2 := c.items[url]; ok2 && c.now().After(e2.expiry) {
			delete(c.items, url)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.doc, true
}

// Set stores a document body. Evicts the oldest entry if at capacity.
func (c *DocumentCache) Set(url string, body []byte) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e := entry{
		doc:       &CachedDocument{URL: url, Body: body, FetchedAt: now},
		expiry:    now.Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	if _, exists := c.items[url]; exists {
		c.items[url] = e
		return
	}

	if len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[url] = e
}

// InvalidatePrefix removes all entries whose URL starts with prefix.
// An empty prefix clears the cache.
func (c *DocumentCache) InvalidatePrefix(prefix string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (c *DocumentCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *DocumentCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

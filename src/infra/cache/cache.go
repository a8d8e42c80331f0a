package cache

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	value      string
	expiresAt  time.Time
	lastAccess atomic.Int64
}

// Cache is a bounded in-memory string cache. Every entry expires after
// the configured time-to-live; when an idle bound is set, entries that
// have not been read for that long expire early. Expired entries are
// dropped lazily on access, the LRU capacity keeps memory bounded in
// between.
type Cache struct {
	entries *lru.Cache[string, *entry]
	ttl     time.Duration
	idle    time.Duration
}

// New creates a cache holding at most maxEntries values for at most ttl.
func New(maxEntries int, ttl time.Duration) (*Cache, error) {
	return NewWithIdle(maxEntries, ttl, 0)
}

// NewWithIdle creates a cache that additionally drops entries not read
// for the idle duration. An idle of zero disables the idle bound.
func NewWithIdle(maxEntries int, ttl, idle time.Duration) (*Cache, error) {
	entries, err := lru.New[string, *entry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries, ttl: ttl, idle: idle}, nil
}

// Set stores value under key, replacing any previous value and
// restarting its lifetime.
func (c *Cache) Set(key, value string) {
	e := &entry{value: value, expiresAt: time.Now().Add(c.ttl)}
	e.lastAccess.Store(time.Now().UnixNano())
	c.entries.Add(key, e)
}

// Get returns the value stored under key. Entries past their lifetime
// or idle bound are treated as absent and removed.
func (c *Cache) Get(key string) (string, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return "", false
	}
	now := time.Now()
	if now.After(e.expiresAt) {
		c.entries.Remove(key)
		return "", false
	}
	if c.idle > 0 && now.Sub(time.Unix(0, e.lastAccess.Load())) > c.idle {
		c.entries.Remove(key)
		return "", false
	}
	e.lastAccess.Store(now.UnixNano())
	return e.value, true
}

// Remove deletes key and reports whether it was present.
func (c *Cache) Remove(key string) bool {
	return c.entries.Remove(key)
}

// Len returns the number of entries currently held, including entries
// that expired but have not been touched since.
func (c *Cache) Len() int {
	return c.entries.Len()
}

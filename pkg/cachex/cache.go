// Package cachex is a namespace-keyed, TTL-based in-memory store. It backs
// both generic key/value caching and the HTTP response cache in Middleware.
package cachex

import (
	"strings"
	"sync"
	"time"
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = 5 * time.Minute

	// DefaultNamespace is used when callers don't partition their keys.
	DefaultNamespace = "default"
)

// Options qualify a single cache operation.
type Options struct {
	// TTL overrides the cache default for this entry. Zero means default.
	TTL time.Duration

	// Namespace partitions the keyspace so related entries can be
	// invalidated together. Empty means DefaultNamespace.
	Namespace string
}

type entry struct {
	value     any
	namespace string
	createdAt time.Time
	expiresAt time.Time
}

// Cache is safe for concurrent use. An entry is logically absent the moment
// now >= expiresAt, whether or not it has been physically purged; reads evict
// lazily and a background sweeper (see StartSweeper) collects the rest.
// Expiry is pure TTL — reads do not extend an entry's life.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	defaultTTL time.Duration
	now        func() time.Time

	sweeping bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	once     sync.Once
}

func New(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

func composeKey(namespace, key string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace + ":" + key
}

// Set stores value under namespace:key, overwriting any existing entry.
func (c *Cache) Set(key string, value any, opts Options) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	ns := opts.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	now := c.now()

	c.mu.Lock()
	c.entries[composeKey(ns, key)] = entry{
		value:     value,
		namespace: ns,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()
}

// Get returns the stored value, or false if absent or expired. An expired
// entry is evicted on the spot.
func (c *Cache) Get(key string, opts Options) (any, bool) {
	ck := composeKey(opts.Namespace, key)

	c.mu.RLock()
	e, ok := c.entries[ck]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have replaced
		// the entry with a fresh one in the meantime.
		if cur, ok := c.entries[ck]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, ck)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Delete removes an entry, reporting whether it existed (expired-but-present
// entries count as absent).
func (c *Cache) Delete(key string, opts Options) bool {
	ck := composeKey(opts.Namespace, key)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ck]
	if !ok {
		return false
	}
	delete(c.entries, ck)

	return c.now().Before(e.expiresAt)
}

// ClearNamespace removes every entry under a namespace and returns how many
// were dropped. Used for coarse invalidation after writes.
func (c *Cache) ClearNamespace(namespace string) int {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	prefix := namespace + ":"

	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// PurgeExpired sweeps the whole map and removes entries past their expiry,
// returning the number removed.
func (c *Cache) PurgeExpired() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Package cache provides a small injectable TTL cache. It replaces what
// would otherwise be process-global dashboard state: the handler receives a
// *Loader and nothing touches package-level singletons.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is an in-memory key->value store with a fixed TTL per entry.
// It is safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		items: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.items[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]entry)
	c.mu.Unlock()
}

// Loader combines the cache with singleflight so that concurrent misses on
// one key run the fetch once and share the result.
type Loader struct {
	cache *Cache
	group singleflight.Group
}

func NewLoader(cache *Cache) *Loader {
	return &Loader{cache: cache}
}

// Load returns the cached value for key, fetching and caching it on a miss.
// Fetch errors are not cached.
func (l *Loader) Load(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		l.cache.Set(key, v)
		return v, nil
	})
	return v, err
}

// Invalidate drops a key, forcing the next Load to refetch.
func (l *Loader) Invalidate(key string) {
	l.cache.Delete(key)
}

package geocode

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"io.winapps.missingpersonalert/internal/observability"
)

// cachedSource wraps a nameSource with an in-memory LRU cache keyed by the
// rounded coordinate. Errors and empty names are not cached, so transient
// failures can be retried.
type cachedSource struct {
	inner   nameSource
	cache   *lruCache
	metrics *observability.Metrics
}

func newCachedSource(inner nameSource, maxEntries int, metrics *observability.Metrics) *cachedSource {
	return &cachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *cachedSource) displayName(ctx context.Context, lat, lon float64) (string, error) {
	key := fmt.Sprintf("%.5f:%.5f", lat, lon)
	if name, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return name, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	name, err := c.inner.displayName(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	if name != "" {
		c.cache.put(key, name)
	}
	return name, nil
}

// lruCache is a small mutex-guarded LRU over a doubly linked list.
type lruCache struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List
	items      map[string]*list.Element
}

type lruEntry struct {
	key   string
	value string
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*lruEntry).value, true
}

func (c *lruCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*lruEntry).value = value
		return
	}

	c.items[key] = c.ll.PushFront(&lruEntry{key: key, value: value})

	if c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}
}

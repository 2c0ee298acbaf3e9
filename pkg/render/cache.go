package render

import (
	"container/list"
	"sync"
)

// DefaultCacheSize bounds the number of memoized translations.
const DefaultCacheSize = 1024

// Key identifies a translation. Two sessions share a cached entry only
// when every field that can change the rendered SQL matches.
type Key struct {
	SQL            string
	Database       string
	Schema         string
	Role           string
	Warehouse      string
	AccountCatalog string
	InfoSchema     string
}

type cacheEntry struct {
	key Key
	sql []string
}

// cache is a mutex-guarded LRU of rendered statements.
type cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[Key]*list.Element
	order    *list.List // front is most recently used
}

func newCache(capacity int) *cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &cache{
		capacity: capacity,
		entries:  make(map[Key]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *cache) get(key Key) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).sql, true
}

func (c *cache) put(key Key, sql []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).sql = sql
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, sql: sql})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*list.Element, c.capacity)
	c.order.Init()
}

func (c *cache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

package nutrition

import (
	"strings"
	"sync"
)

const cacheCalories = "calories"

// Cache is a namespaced in-memory result cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]string
}

func NewCache() *Cache {
	return &Cache{entries: map[string][]string{}}
}

func cacheKey(ns, key string) string { return ns + "::" + key }

func (c *Cache) Get(ns, key string) ([]string, bool) {
	c.mu.RLock()
	v, ok := c.entries[cacheKey(ns, key)]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return append([]string(nil), v...), true
}

func (c *Cache) Put(ns, key string, v []string) {
	c.mu.Lock()
	c.entries[cacheKey(ns, key)] = append([]string(nil), v...)
	c.mu.Unlock()
}

// Clear drops every entry in namespace ns.
func (c *Cache) Clear(ns string) {
	prefix := ns + "::"
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

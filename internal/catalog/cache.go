package catalog

import (
	"slices"
	"sync"

	"lodgeportal/internal/entity"
)

// Cache memoizes Load results per path. It is an explicit object rather
// than package-level memoization so tests stay isolated; invalidation
// only ever happens through Invalidate or Reset, typically right after a
// Persist.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	rows []entity.Work
	err  error
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Load returns the memoized table for path, reading the file on first
// use. Parse failures are memoized too: a malformed catalog stays an
// empty table until someone clears the cache. Callers get a copy of the
// row slice.
func (c *Cache) Load(path string) ([]entity.Work, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok {
		rows, err := Load(path)
		e = cacheEntry{rows: rows, err: err}
		c.entries[path] = e
	}
	return slices.Clone(e.rows), e.err
}

// Invalidate drops the memoized result for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Reset drops every memoized result.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

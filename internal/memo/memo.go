// Package memo holds the resolved-value cache of one render pass.
//
// Entries are keyed by (scope key, expression). A Resolution with Found=false
// is a legal entry meaning "could not be resolved structurally"; it is kept
// apart from a cache miss, which is reported by the second return of Lookup.
// A Cache is not safe for concurrent use: it belongs to a single render.
package memo

// Resolution is the outcome of one structural lookup.
type Resolution struct {
	Value any
	Found bool
}

type key struct {
	scope string
	expr  string
}

// Cache memoizes resolutions per scope.
type Cache struct {
	entries map[key]Resolution
	hits    int
	misses  int
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[key]Resolution)}
}

// Lookup returns the memoized resolution and whether one was stored.
func (c *Cache) Lookup(scope, expr string) (Resolution, bool) {
	r, ok := c.entries[key{scope, expr}]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return r, ok
}

// Store memoizes r, replacing any existing entry.
func (c *Cache) Store(scope, expr string, r Resolution) {
	c.entries[key{scope, expr}] = r
}

// Len reports the number of entries.
func (c *Cache) Len() int { return len(c.entries) }

// Stats reports lookup hits and misses since the last Reset.
func (c *Cache) Stats() (hits, misses int) { return c.hits, c.misses }

// Reset drops every entry. It is called at the end of each top-level render.
func (c *Cache) Reset() {
	clear(c.entries)
	c.hits, c.misses = 0, 0
}

// Package shardcache is a concurrent, text-keyed cache split into shards by
// an FNV-1a hash of the key, so unrelated keys rarely contend on one lock.
//
// Entries are never evicted; growth is bounded only by the number of
// distinct keys a process sees.
package shardcache

import (
	"sync"

	"github.com/segmentio/fasthash/fnv1a"
)

const shardCount = 32

type shard[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// Cache maps strings to values of type V.
type Cache[V any] struct {
	shards [shardCount]shard[V]
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	c := &Cache[V]{}
	for i := range c.shards {
		c.shards[i].entries = make(map[string]V)
	}
	return c
}

func (c *Cache[V]) shard(key string) *shard[V] {
	return &c.shards[fnv1a.HashString64(key)%shardCount]
}

// Get returns the value stored for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	s := c.shard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// GetOrCreate returns the value for key, calling create on a miss. Two
// goroutines missing on the same key may both call create; the first stored
// value wins and is returned to both. Errors are not cached.
func (c *Cache[V]) GetOrCreate(key string, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok {
		return existing, nil
	}
	s.entries[key] = v
	return v, nil
}

// Len reports the number of entries across all shards.
func (c *Cache[V]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		clear(s.entries)
		s.mu.Unlock()
	}
}

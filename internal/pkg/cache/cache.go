// Package cache is a small typed wrapper over go-cache used for read-mostly
// listings. Values are shared; callers must not mutate what Get returns.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store caches values of type T by key with a fixed TTL
type Store[T any] struct {
	c   *gocache.Cache
	ttl time.Duration
}

// New creates a store. A ttl <= 0 disables caching: Get always misses.
func New[T any](ttl time.Duration) *Store[T] {
	cleanup := 2 * ttl
	if ttl <= 0 {
		cleanup = time.Minute
	}
	return &Store[T]{
		c:   gocache.New(ttl, cleanup),
		ttl: ttl,
	}
}

// Get returns the cached value for key
func (s *Store[T]) Get(key string) (T, bool) {
	var zero T
	if s.ttl <= 0 {
		return zero, false
	}
	v, ok := s.c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Set stores value under key with the store TTL
func (s *Store[T]) Set(key string, value T) {
	if s.ttl <= 0 {
		return
	}
	s.c.Set(key, value, gocache.DefaultExpiration)
}

// Delete drops one key
func (s *Store[T]) Delete(key string) {
	s.c.Delete(key)
}

// Flush drops every key
func (s *Store[T]) Flush() {
	s.c.Flush()
}

// Len returns the number of cached items, expired ones included until cleanup
func (s *Store[T]) Len() int {
	return s.c.ItemCount()
}

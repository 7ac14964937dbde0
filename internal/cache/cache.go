package cache

import (
	"time"

	expirable "github.com/hashicorp/golang-lru/v2/expirable"
)

// TTLCache is a capacity-bounded in-memory cache with per-entry TTL and LRU
// eviction on overflow. It is injected into call sites rather than held as a
// package-level singleton so it can be swapped for a distributed cache later.
// Entries are best-effort: everything is lost on process restart.
type TTLCache[V any] struct {
	lru *expirable.LRU[string, V]
}

func New[V any](size int, ttl time.Duration) *TTLCache[V] {
	if size <= 0 {
		size = 128
	}
	return &TTLCache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *TTLCache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *TTLCache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

func (c *TTLCache[V]) Len() int {
	return c.lru.Len()
}

func (c *TTLCache[V]) Purge() {
	c.lru.Purge()
}

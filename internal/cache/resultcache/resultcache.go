// Package resultcache keeps recently processed pipeline results in
// memory, keyed by dataset fingerprint.
package resultcache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, model.Result]

	hits   uint64
	misses uint64
}

func New(size int) *Cache {
	if size <= 0 {
		size = 128
	}
	c, _ := lru.New[string, model.Result](size)
	return &Cache{lru: c}
}

func (c *Cache) Get(key string) (model.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.lru.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return res, ok
}

func (c *Cache) Add(key string, res model.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, res)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns hit/miss counters for metrics scraping.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

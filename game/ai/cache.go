package ai

import (
	"sync"

	"ShashkiAI/game/core"
)

type cacheKey struct {
	board  core.Board
	toMove core.Side
	depth  int
}

// cache holds exact minimax values for one search. Keys are whole board
// values, so two move orders reaching the same position share an entry.
type cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]float64
	limit   int
}

func newCache(limit int) *cache {
	return &cache{entries: make(map[cacheKey]float64), limit: limit}
}

func (c *cache) probe(key cacheKey) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// store drops new entries once the limit is reached.
func (c *cache) store(key cacheKey, v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limit > 0 && len(c.entries) >= c.limit {
		return
	}
	c.entries[key] = v
}

func (c *cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

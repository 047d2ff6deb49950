package rules

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// ProgramCache stores compiled programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type memoryCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryCache returns an unbounded ProgramCache safe for concurrent use.
func NewMemoryCache() ProgramCache {
	return &memoryCache{programs: make(map[string]any)}
}

func (c *memoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

func (c *memoryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs[key] = value
}

type lruCache struct {
	programs *lru.Cache
}

// NewLRUCache returns a ProgramCache that keeps at most size programs,
// evicting the least recently used.
func NewLRUCache(size int) (ProgramCache, error) {
	programs, err := lru.New(size)
	if err != nil {
		return nil, wrapEvaluatorError("cache", err)
	}
	return &lruCache{programs: programs}, nil
}

func (c *lruCache) Get(key string) (any, bool) {
	return c.programs.Get(key)
}

func (c *lruCache) Set(key string, value any) {
	c.programs.Add(key, value)
}

package preprocess

import (
	"context"
	"sync"
)

// RewriteCache memoizes rewrites within one request. A rewrite for a
// given cache key is computed at most once; concurrent readers of the
// same key block on the first computation and reuse its value. The
// cache lives and dies with the request.
type RewriteCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once  sync.Once
	value string
}

func NewRewriteCache() *RewriteCache {
	return &RewriteCache{entries: make(map[string]*cacheEntry)}
}

// Get returns the memoized rewrite for key, computing it via compute on
// first access.
func (c *RewriteCache) Get(ctx context.Context, key string, compute func(context.Context) string) string {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.value = compute(ctx)
	})
	return e.value
}

package music

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

const searchCacheTTL = 5 * time.Minute

type searchCacheEntry struct {
	results   []string
	expiresAt time.Time
}

// CachingSearcher memoizes non-empty search results for a short TTL.
// Failures and empty results are never cached.
type CachingSearcher struct {
	next Searcher
	ttl  time.Duration
	now  func() time.Time

	mu   sync.RWMutex
	data map[string]searchCacheEntry
}

func NewCachingSearcher(next Searcher) *CachingSearcher {
	return &CachingSearcher{
		next: next,
		ttl:  searchCacheTTL,
		now:  time.Now,
		data: make(map[string]searchCacheEntry),
	}
}

func (c *CachingSearcher) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	key := cacheKey(query, maxResults)
	if cached, ok := c.get(key); ok {
		return cached, nil
	}

	results, err := c.next.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		c.set(key, results)
	}
	return results, nil
}

func cacheKey(query string, maxResults int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return strconv.Itoa(maxResults) + ":" + normalized
}

func (c *CachingSearcher) get(key string) ([]string, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.results, true
}

func (c *CachingSearcher) set(key string, results []string) {
	c.mu.Lock()
	c.data[key] = searchCacheEntry{
		results:   results,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

package gateway

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/aurascan/aurascan/internal/models"
)

// fingerprintPrefixLen bounds how much of the payload feeds the fingerprint.
// A stable prefix is enough to identify "the same request" and keeps hashing
// cheap for multi-megabyte images.
const fingerprintPrefixLen = 512

// fingerprint derives the cache key for a request from a stable prefix of its
// input.
func fingerprint(kind, input string) string {
	if len(input) > fingerprintPrefixLen {
		input = input[:fingerprintPrefixLen]
	}
	h := fnv.New64a()
	h.Write([]byte(kind))
	h.Write([]byte{':'})
	h.Write([]byte(input))
	return fmt.Sprintf("%s:%016x", kind, h.Sum64())
}

type cacheEntry struct {
	result   *models.ProductAnalysis
	storedAt time.Time
}

// resultCache is a small bounded map with TTL eviction checked on every read.
// There is no background sweep; expiry is purged lazily so behavior stays
// deterministic. The mutex guards against concurrent callers of the gateway.
type resultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]cacheEntry
}

func newResultCache(ttl time.Duration, max int) *resultCache {
	return &resultCache{
		ttl:     ttl,
		max:     max,
		entries: make(map[string]cacheEntry),
	}
}

// get purges expired entries, then returns a live entry if one matches.
func (c *resultCache) get(key string, now time.Time) (*models.ProductAnalysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.result, true
}

// put stores a result, evicting the oldest entry when at capacity.
func (c *resultCache) put(key string, result *models.ProductAnalysis, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey, oldest = k, e.storedAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = cacheEntry{result: result, storedAt: now}
}

// len reports the number of entries, expired or not.
func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

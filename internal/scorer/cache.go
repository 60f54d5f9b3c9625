package scorer

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/keiba-ai/internal/metrics"
)

// CacheKey identifies one cached score response
type CacheKey struct {
	RaceID       string
	ModelVersion string
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return k.RaceID + ":" + k.ModelVersion
}

// ScoreCache provides in-memory caching for score responses. Scores only
// change when the model is retrained, so a short TTL keeps repeat
// simulations of the same race from hammering the scoring service.
type ScoreCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewScoreCache creates a new score cache
func NewScoreCache(ttl time.Duration, maxSize int) *ScoreCache {
	return &ScoreCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached score response
func (sc *ScoreCache) Get(key CacheKey) *ScoreResponse {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if result, found := sc.cache.Get(key.String()); found {
		if resp, ok := result.(*ScoreResponse); ok {
			sc.hitCount++
			sc.updateMetrics()
			return resp
		}
	}

	sc.missCount++
	sc.updateMetrics()
	return nil
}

// Set stores a score response in cache
func (sc *ScoreCache) Set(key CacheKey, resp *ScoreResponse) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.cache.ItemCount() >= sc.maxSize {
		sc.cache.DeleteExpired()
	}

	sc.cache.Set(key.String(), resp, sc.ttl)
}

// Invalidate removes the cache entry for one race
func (sc *ScoreCache) Invalidate(key CacheKey) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.cache.Delete(key.String())
}

// Clear flushes the entire cache
func (sc *ScoreCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.cache.Flush()
	sc.hitCount = 0
	sc.missCount = 0
}

// Stats returns cache statistics
func (sc *ScoreCache) Stats() (hits, misses uint64, ratio float64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.statsLocked()
}

func (sc *ScoreCache) statsLocked() (hits, misses uint64, ratio float64) {
	hits = sc.hitCount
	misses = sc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (sc *ScoreCache) ItemCount() int {
	return sc.cache.ItemCount()
}

func (sc *ScoreCache) updateMetrics() {
	_, _, ratio := sc.statsLocked()
	metrics.ScorerCacheHitRate.Set(ratio)
}

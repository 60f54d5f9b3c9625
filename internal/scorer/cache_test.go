package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestCacheKeyString tests cache key string representation
func TestCacheKeyString(t *testing.T) {
	key := CacheKey{RaceID: "202405021211", ModelVersion: "v3"}
	assert.Equal(t, "202405021211:v3", key.String())
}

// TestScoreCacheGetMiss tests Get on an empty cache
func TestScoreCacheGetMiss(t *testing.T) {
	cache := NewScoreCache(time.Hour, 100)
	defer cache.Clear()

	result := cache.Get(CacheKey{RaceID: "202405021211", ModelVersion: "v3"})
	assert.Nil(t, result)
}

// TestScoreCacheSetGet tests the round trip
func TestScoreCacheSetGet(t *testing.T) {
	cache := NewScoreCache(time.Hour, 100)
	defer cache.Clear()

	key := CacheKey{RaceID: "202405021211", ModelVersion: "v3"}
	resp := &ScoreResponse{
		RaceID:       "202405021211",
		ModelVersion: "v3",
		Scores:       []RunnerScore{{RunnerNo: 1, Score: 1.2}},
	}

	cache.Set(key, resp)

	got := cache.Get(key)
	assert.Equal(t, resp, got)
	assert.Equal(t, 1, cache.ItemCount())
}

// TestScoreCacheModelVersionIsolation tests that versions do not collide
func TestScoreCacheModelVersionIsolation(t *testing.T) {
	cache := NewScoreCache(time.Hour, 100)
	defer cache.Clear()

	cache.Set(CacheKey{RaceID: "202405021211", ModelVersion: "v3"}, &ScoreResponse{ModelVersion: "v3"})

	got := cache.Get(CacheKey{RaceID: "202405021211", ModelVersion: "v4"})
	assert.Nil(t, got)
}

// TestScoreCacheExpiry tests TTL expiration
func TestScoreCacheExpiry(t *testing.T) {
	cache := NewScoreCache(50*time.Millisecond, 100)
	defer cache.Clear()

	key := CacheKey{RaceID: "202405021211", ModelVersion: "v3"}
	cache.Set(key, &ScoreResponse{RaceID: "202405021211"})

	time.Sleep(100 * time.Millisecond)
	assert.Nil(t, cache.Get(key))
}

// TestScoreCacheInvalidate tests targeted invalidation
func TestScoreCacheInvalidate(t *testing.T) {
	cache := NewScoreCache(time.Hour, 100)
	defer cache.Clear()

	key := CacheKey{RaceID: "202405021211", ModelVersion: "v3"}
	other := CacheKey{RaceID: "202405021212", ModelVersion: "v3"}
	cache.Set(key, &ScoreResponse{RaceID: key.RaceID})
	cache.Set(other, &ScoreResponse{RaceID: other.RaceID})

	cache.Invalidate(key)

	assert.Nil(t, cache.Get(key))
	assert.NotNil(t, cache.Get(other))
}

// TestScoreCacheStats tests hit and miss accounting
func TestScoreCacheStats(t *testing.T) {
	cache := NewScoreCache(time.Hour, 100)
	defer cache.Clear()

	key := CacheKey{RaceID: "202405021211", ModelVersion: "v3"}
	cache.Set(key, &ScoreResponse{RaceID: key.RaceID})

	cache.Get(key)                                                   // hit
	cache.Get(CacheKey{RaceID: "000000000000", ModelVersion: "v3"}) // miss

	hits, misses, ratio := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 0.5, ratio, 0.001)
}

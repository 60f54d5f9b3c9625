package scorer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-ai/internal/config"
)

// CachedClient wraps Client with score caching
type CachedClient struct {
	client *Client
	cache  *ScoreCache
	logger *logrus.Logger
}

// NewCachedClient creates a new cached scoring client
func NewCachedClient(cfg *config.ScorerConfig, logger *logrus.Logger) *CachedClient {
	return &CachedClient{
		client: NewClient(cfg, logger),
		cache: NewScoreCache(
			time.Duration(cfg.CacheTTLSeconds)*time.Second,
			cfg.CacheMaxSize,
		),
		logger: logger,
	}
}

// ModelVersion returns the model version this client requests scores from
func (c *CachedClient) ModelVersion() string {
	return c.client.ModelVersion()
}

// ScoreRace retrieves scores with caching
func (c *CachedClient) ScoreRace(ctx context.Context, req ScoreRequest) (*ScoreResponse, error) {
	if req.ModelVersion == "" {
		req.ModelVersion = c.client.ModelVersion()
	}

	key := CacheKey{RaceID: req.RaceID, ModelVersion: req.ModelVersion}
	if cached := c.cache.Get(key); cached != nil {
		c.logger.WithField("cache_key", key.String()).Debug("Cache hit for scores")
		return cached, nil
	}

	c.logger.WithField("cache_key", key.String()).Debug("Cache miss, fetching from scorer")
	resp, err := c.client.ScoreRace(ctx, req)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, resp)
	return resp, nil
}

// InvalidateRace drops the cached scores for one race, for use when its
// card changes (scratchings, rider changes).
func (c *CachedClient) InvalidateRace(raceID string) {
	c.cache.Invalidate(CacheKey{RaceID: raceID, ModelVersion: c.client.ModelVersion()})
}

// ClearCache clears all cached scores
func (c *CachedClient) ClearCache() {
	c.cache.Clear()
}

// CacheStats returns cache statistics
func (c *CachedClient) CacheStats() (hits, misses uint64, hitRatio float64) {
	return c.cache.Stats()
}

// HealthCheck checks scoring service health
func (c *CachedClient) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}

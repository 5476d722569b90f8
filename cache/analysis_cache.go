package cache

import (
	"context"
	"fmt"
	"time"
)

// AnalysisCache caches LLM narrative analyses and prevents duplicate webhook
// signals from re-running the pipeline in quick succession.
type AnalysisCache struct {
	redis *RedisClient
}

// NewAnalysisCache creates a new analysis cache. redis may be nil, in which
// case every lookup misses and stores are no-ops.
func NewAnalysisCache(redis *RedisClient) *AnalysisCache {
	return &AnalysisCache{redis: redis}
}

// GetAnalysis retrieves a cached analysis text by key.
func (c *AnalysisCache) GetAnalysis(ctx context.Context, key string) (string, bool) {
	if c == nil || c.redis == nil {
		return "", false
	}

	var text string
	if err := c.redis.Get(ctx, key, &text); err != nil {
		return "", false
	}
	return text, true
}

// SetAnalysis caches an analysis text with a TTL.
func (c *AnalysisCache) SetAnalysis(ctx context.Context, key, text string, ttl time.Duration) error {
	if c == nil || c.redis == nil {
		return fmt.Errorf("redis client not available")
	}
	return c.redis.Set(ctx, key, text, ttl)
}

// MarkSignal records an inbound webhook signal fingerprint. Returns false
// when the same fingerprint was seen within the window, letting the caller
// skip duplicate alerts without failing them.
func (c *AnalysisCache) MarkSignal(ctx context.Context, symbol, action string, price float64, window time.Duration) bool {
	if c == nil || c.redis == nil {
		return true
	}

	key := fmt.Sprintf("webhook:seen:%s:%s:%.5f", symbol, action, price)
	fresh, err := c.redis.SetNX(ctx, key, time.Now().Unix(), window)
	if err != nil {
		return true
	}
	return fresh
}

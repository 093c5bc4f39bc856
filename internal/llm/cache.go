// internal/llm/cache.go
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/common/metrics"
)

// CompletionCache stores completion payloads keyed by request fingerprint.
// Implementations must treat lookup failures as misses.
type CompletionCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// CacheKey fingerprints a completion request. Two requests share a key only
// when model, prompt, and sampling parameters all match.
func CacheKey(model string, req CompletionRequest) string {
	raw := fmt.Sprintf("%s|%s|%d|%.4f|%t", model, req.Prompt, req.MaxTokens, req.Temperature, req.JSONMode)
	sum := sha256.Sum256([]byte(raw))
	return "completion:" + hex.EncodeToString(sum[:])
}

// RedisCache backs the completion cache with Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		metrics.CacheEventsTotal.WithLabelValues("redis", "miss").Inc()
		return "", false
	}
	if err != nil {
		c.logger.WithError(err).Warn("Completion cache lookup failed", nil)
		metrics.CacheEventsTotal.WithLabelValues("redis", "error").Inc()
		return "", false
	}
	metrics.CacheEventsTotal.WithLabelValues("redis", "hit").Inc()
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("Completion cache write failed", nil)
		metrics.CacheEventsTotal.WithLabelValues("redis", "error").Inc()
	}
}

// LRUCache keeps completions in process memory. Suitable for single runs
// where no Redis instance is available.
type LRUCache struct {
	cache *lru.Cache[string, string]
}

func NewLRUCache(size int) (*LRUCache, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{cache: cache}, nil
}

func (c *LRUCache) Get(_ context.Context, key string) (string, bool) {
	val, ok := c.cache.Get(key)
	if ok {
		metrics.CacheEventsTotal.WithLabelValues("memory", "hit").Inc()
	} else {
		metrics.CacheEventsTotal.WithLabelValues("memory", "miss").Inc()
	}
	return val, ok
}

func (c *LRUCache) Set(_ context.Context, key, value string) {
	c.cache.Add(key, value)
}

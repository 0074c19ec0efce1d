package server

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/config"
	pkgredis "github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/redis"
)

const keyPrefix = "ranksearch:"

// QueryCache memoizes search responses in Redis. Concurrent identical
// queries collapse into one computation via singleflight. The cache key is
// order-sensitive: the ranking depends on query term order, so "apple
// banana" and "banana apple" cache separately.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewQueryCache wraps a connected Redis client.
func NewQueryCache(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached response for a query, if present.
func (c *QueryCache) Get(ctx context.Context, query string, limit int, lines bool) (*SearchResponse, bool) {
	key := c.buildKey(query, limit, lines)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result SearchResponse
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

// Set stores a response with the configured TTL. Failures are logged and
// swallowed; the cache is best-effort.
func (c *QueryCache) Set(ctx context.Context, query string, limit int, lines bool, result *SearchResponse) {
	key := c.buildKey(query, limit, lines)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response or computes and stores it,
// collapsing concurrent identical requests into one computation.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	limit int,
	lines bool,
	computeFn func() (*SearchResponse, error),
) (*SearchResponse, bool, error) {
	if result, ok := c.Get(ctx, query, limit, lines); ok {
		return result, true, nil
	}
	key := c.buildKey(query, limit, lines)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, query, limit, lines); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, limit, lines, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*SearchResponse), false, nil
}

// Invalidate drops every cached response.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string, limit int, lines bool) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	raw := fmt.Sprintf("%s:limit=%d:lines=%t", normalized, limit, lines)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/deep-thoughts/deep-thoughts-backend/internal/database"
)

const (
	cacheKeyPrefix = "cache:"
	feedCacheKey   = "thoughts:feed"
	feedCacheTTL   = 30 * time.Second
)

// cacheGet retrieves a cached value. A miss, an unavailable Redis, or a
// decode failure all report a miss rather than an error.
func cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if database.RedisClient == nil {
		return false
	}

	val, err := database.RedisClient.Get(ctx, cacheKeyPrefix+key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false
	}
	return true
}

// cacheSet stores a value with a TTL. Best effort: failures are ignored,
// the store is the source of truth.
func cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if database.RedisClient == nil {
		return
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		return
	}
	database.RedisClient.Set(ctx, cacheKeyPrefix+key, jsonData, ttl)
}

// cacheDelete drops a cached value, if Redis is around to hold one.
func cacheDelete(ctx context.Context, key string) {
	if database.RedisClient == nil {
		return
	}
	database.RedisClient.Del(ctx, cacheKeyPrefix+key)
}

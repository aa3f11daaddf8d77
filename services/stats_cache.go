package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/utilink-app/dossier-api/config"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 60 * time.Second
)

// StatsCache caches dashboard aggregates in Redis. The cache fails open:
// any Redis error is logged and treated as a miss, so the dashboard still
// works without a reachable Redis.
type StatsCache struct {
	client *redis.Client
}

var statsCacheInstance *StatsCache

// InitStatsCache connects to Redis when REDIS_ADDR is configured. Without
// it the cache stays disabled and every lookup is a miss.
func InitStatsCache() *StatsCache {
	cfg := config.GetConfig()
	if cfg == nil || cfg.RedisAddr == "" {
		logrus.Info("REDIS_ADDR not set, dashboard stats cache disabled")
		statsCacheInstance = &StatsCache{}
		return statsCacheInstance
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	statsCacheInstance = &StatsCache{client: client}
	return statsCacheInstance
}

// GetStatsCache returns the initialized cache instance
func GetStatsCache() *StatsCache {
	if statsCacheInstance == nil {
		statsCacheInstance = &StatsCache{}
	}
	return statsCacheInstance
}

// Get loads cached stats into dest, reporting whether there was a hit
func (sc *StatsCache) Get(ctx context.Context, dest interface{}) bool {
	if sc.client == nil {
		return false
	}

	payload, err := sc.client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.Warnf("stats cache read failed: %v", err)
		}
		return false
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		logrus.Warnf("stats cache payload invalid: %v", err)
		return false
	}
	return true
}

// Set stores stats with a short TTL
func (sc *StatsCache) Set(ctx context.Context, stats interface{}) {
	if sc.client == nil {
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		logrus.Warnf("stats cache marshal failed: %v", err)
		return
	}

	if err := sc.client.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
		logrus.Warnf("stats cache write failed: %v", err)
	}
}

// Invalidate drops the cached stats; called after any dossier mutation
func (sc *StatsCache) Invalidate(ctx context.Context) {
	if sc.client == nil {
		return
	}

	if err := sc.client.Del(ctx, statsCacheKey).Err(); err != nil {
		logrus.Warnf("stats cache invalidation failed: %v", err)
	}
}

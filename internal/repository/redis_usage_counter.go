package repository

import (
	"context"
	"fmt"
	"time"

	"lifex-server/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	usageKeyPrefix = "lifex:usage"
	// A bucket only matters during its hour; the extra hour covers clock skew between instances.
	usageKeyTTL = 2 * time.Hour
)

// releaseScript decrements a counter without letting it drop below zero.
var releaseScript = redis.NewScript(`
local v = tonumber(redis.call("GET", KEYS[1]) or "0")
if v <= 0 then
  return 0
end
return redis.call("DECR", KEYS[1])
`)

// RedisUsageCounter keeps hourly assistant counters in Redis.
type RedisUsageCounter struct {
	client redis.UniversalClient
	logger domain.Logger
}

func NewRedisUsageCounter(client redis.UniversalClient, logger domain.Logger) *RedisUsageCounter {
	return &RedisUsageCounter{client: client, logger: logger}
}

// UsageKey is the Redis key of a user's bucket, e.g. lifex:usage:u1:coly:2024010114.
func UsageKey(userID string, assistant domain.Assistant, hourBucket time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", usageKeyPrefix, userID, assistant, hourBucket.UTC().Format("2006010215"))
}

// Increment ignores the token; Redis is not behind row level security.
func (c *RedisUsageCounter) Increment(ctx context.Context, userID string, assistant domain.Assistant, hourBucket time.Time, _ string) (int, error) {
	key := UsageKey(userID, assistant, hourBucket)

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, usageKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}
	return int(incr.Val()), nil
}

func (c *RedisUsageCounter) Read(ctx context.Context, userID string, assistant domain.Assistant, hourBucket time.Time, _ string) (int, error) {
	n, err := c.client.Get(ctx, UsageKey(userID, assistant, hourBucket)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

func (c *RedisUsageCounter) Release(ctx context.Context, userID string, assistant domain.Assistant, hourBucket time.Time, _ string) error {
	if err := releaseScript.Run(ctx, c.client, []string{UsageKey(userID, assistant, hourBucket)}).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release usage: %w", err)
	}
	return nil
}

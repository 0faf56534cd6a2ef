package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlidingWindow counts requests per terminal over a rolling window using a
// Redis sorted set. A nil client disables limiting entirely, which keeps
// tests and single-terminal deployments free of a Redis requirement.
type SlidingWindow struct {
	Client *redis.Client
	Prefix string
	Window time.Duration
	Max    int
}

// Allow registers one request under key and reports whether the terminal is
// still within its budget, along with the remaining budget and reset time.
func (l SlidingWindow) Allow(ctx context.Context, key string) (allowed bool, remaining int, reset time.Time, err error) {
	if l.Client == nil || l.Max <= 0 || l.Window <= 0 {
		return true, l.Max, time.Now().Add(l.Window), nil
	}

	now := time.Now()
	reset = now.Add(l.Window)
	cutoff := strconv.FormatInt(now.Add(-l.Window).UnixNano(), 10)
	redisKey := l.Prefix + key

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.Window)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, reset, err
	}

	current := int(countCmd.Val())
	remaining = l.Max - current
	if remaining < 0 {
		remaining = 0
	}
	return current <= l.Max, remaining, reset, nil
}

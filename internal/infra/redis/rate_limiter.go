package redis

import (
	"context"
	"fmt"
	"time"

	"heritage-access-platform/internal/infra/metrics"
)

// RateLimiter is a fixed-window counter. The redeem route uses it so a
// client cannot enumerate codes by hammering distinct guesses.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		metrics.IncRateLimitRejection("redeem")
		return false, nil
	}
	return true, nil
}

// RedeemKey scopes the redeem window per caller identity (user id, or the
// remote address for anonymous traffic).
func RedeemKey(identity string) string {
	return fmt.Sprintf("rate_limit:redeem:%s", identity)
}

package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key pattern:
// - ratelimit:{client_id}:frames - fixed window, per-connection frame limit

// RateLimitConfig contains configuration for rate limiting
type RateLimitConfig struct {
	FrameLimit  int           // Max dispatched frames per window
	FrameWindow time.Duration // Frame rate limit window
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		FrameLimit:  120, // 120 frames per minute
		FrameWindow: 60 * time.Second,
	}
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter. A nil redis client disables
// limiting entirely.
func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, config: config}
}

// AllowFrame checks whether clientID may dispatch another frame.
func (r *RateLimiter) AllowFrame(ctx context.Context, clientID string) (bool, error) {
	if r == nil || r.client == nil {
		return true, nil
	}
	key := fmt.Sprintf("ratelimit:%s:frames", clientID)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.config.FrameWindow).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(r.config.FrameLimit), nil
}

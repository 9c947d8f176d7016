package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLoginAttempts = 10
	defaultLoginWindow   = time.Minute
)

// LoginLimiter throttles login attempts per username using a fixed
// window counter. Key format: login:<username>
type LoginLimiter struct {
	client   *redis.Client
	attempts int64
	window   time.Duration
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
// Non-positive attempts or window fall back to defaults.
func NewLoginLimiter(client *redis.Client, attempts int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		client:   client,
		attempts: int64(attempts),
		window:   window,
	}
	if l.attempts <= 0 {
		l.attempts = defaultLoginAttempts
	}
	if l.window <= 0 {
		l.window = defaultLoginWindow
	}
	return l
}

// Allow records one attempt for username and reports whether it is still
// within the window budget. The expiry is set only when the key is first
// created, so the window does not slide on repeated attempts.
func (l *LoginLimiter) Allow(ctx context.Context, username string) (bool, error) {
	key := l.key(username)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("login limiter incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("login limiter expire: %w", err)
		}
	}
	return n <= l.attempts, nil
}

func (l *LoginLimiter) key(username string) string {
	return fmt.Sprintf("login:%s", username)
}

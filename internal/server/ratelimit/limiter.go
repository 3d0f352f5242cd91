// Package ratelimit throttles login attempts with a fixed-window counter
// in redis, keyed per username and per client IP.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srolel/passkeep/internal/logging"
	"github.com/srolel/passkeep/internal/shared"
)

// Limiter gates login attempts. Enforce returns shared.ErrRateLimited when
// the caller has exceeded the configured attempt budget, nil otherwise.
type Limiter interface {
	Enforce(ctx context.Context, username, ip string) error
}

// Noop performs no throttling. Used when no redis address is configured.
type Noop struct{}

func (Noop) Enforce(ctx context.Context, username, ip string) error { return nil }

// RedisLimiter counts attempts in fixed windows via INCR + EXPIRE. A redis
// outage fails open: login availability is preferred over throttling, and
// the failure is logged.
type RedisLimiter struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
	logger      logging.Logger
}

func NewRedisLimiter(client *redis.Client, maxAttempts int, window time.Duration, logger logging.Logger) *RedisLimiter {
	return &RedisLimiter{
		redis:       client,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
	}
}

func (l *RedisLimiter) Enforce(ctx context.Context, username, ip string) error {
	if err := l.enforceKey(ctx, "login:u:"+username); err != nil {
		return err
	}

	if ip != "" {
		if err := l.enforceKey(ctx, "login:ip:"+ip); err != nil {
			return err
		}
	}

	return nil
}

func (l *RedisLimiter) enforceKey(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn(ctx, "rate limiter unavailable, allowing attempt", "error", err.Error())
		return nil
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn(ctx, "rate limiter expire failed", "key", key, "error", err.Error())
		}
	}

	if count > int64(l.maxAttempts) {
		return shared.ErrRateLimited
	}

	return nil
}

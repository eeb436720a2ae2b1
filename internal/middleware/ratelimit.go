package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter decides whether one more request for key fits the budget.
// retryAfter is only meaningful when allowed is false.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// LocalLimiter keeps one token bucket per key in process memory.
type LocalLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
}

// NewLocalLimiter creates a LocalLimiter allowing rps requests per second per key.
func NewLocalLimiter(rps, burst int) *LocalLimiter {
	return &LocalLimiter{
		clients: make(map[string]*rate.Limiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	limiter, exists := l.clients[key]
	if !exists {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.clients[key] = limiter
	}
	l.mu.Unlock()

	if limiter.Allow() {
		return true, 0, nil
	}
	return false, time.Duration(float64(time.Second) / float64(l.rps)), nil
}

// RedisLimiter shares the budget across API instances through Redis.
// When Redis cannot answer it falls back to a LocalLimiter.
type RedisLimiter struct {
	limiter  *redis_rate.Limiter
	limit    redis_rate.Limit
	fallback *LocalLimiter
	logger   *slog.Logger
}

// NewRedisLimiter creates a RedisLimiter over rdb.
func NewRedisLimiter(rdb *redis.Client, rps, burst int, logger *slog.Logger) *RedisLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		limit:    redis_rate.Limit{Rate: rps, Burst: burst, Period: time.Second},
		fallback: NewLocalLimiter(rps, burst),
		logger:   logger,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := l.limiter.Allow(ctx, "ratelimit:ip:"+key, l.limit)
	if err != nil {
		l.logger.WarnContext(ctx, "redis rate limiter unavailable, using local limiter", "error", err)
		return l.fallback.Allow(ctx, key)
	}
	return res.Allowed > 0, res.RetryAfter, nil
}

package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key fits in the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed-window counter shared by every instance.
type RedisLimiter struct {
	Redis  *redis.Client
	Prefix string
	Limit  int
	Window time.Duration
}

func NewRedisLimiter(r *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{Redis: r, Prefix: prefix, Limit: limit, Window: window}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", r.Prefix, key)
	count, err := r.Redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.Redis.Expire(ctx, redisKey, r.Window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(r.Limit), nil
}

// LocalLimiter is an in-process token bucket per key, used when redis is off.
type LocalLimiter struct {
	visitors    sync.Map
	limit       rate.Limit
	burst       int
	idle        time.Duration
	mu          sync.Mutex
	lastCleanup time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewLocalLimiter allows limit requests per window with a burst of limit.
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		limit:       rate.Limit(float64(limit) / window.Seconds()),
		burst:       limit,
		idle:        5 * window,
		lastCleanup: time.Now(),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()
	l.cleanup(now)

	v, _ := l.visitors.LoadOrStore(key, &visitor{limiter: rate.NewLimiter(l.limit, l.burst)})
	vi := v.(*visitor)
	vi.mu.Lock()
	vi.lastSeen = now
	vi.mu.Unlock()
	return vi.limiter.AllowN(now, 1), nil
}

// cleanup drops idle visitors at most once a minute, on the request path.
func (l *LocalLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	if now.Sub(l.lastCleanup) < time.Minute {
		l.mu.Unlock()
		return
	}
	l.lastCleanup = now
	l.mu.Unlock()

	cutoff := now.Add(-l.idle)
	l.visitors.Range(func(k, v interface{}) bool {
		vi := v.(*visitor)
		vi.mu.Lock()
		stale := vi.lastSeen.Before(cutoff)
		vi.mu.Unlock()
		if stale {
			l.visitors.Delete(k)
		}
		return true
	})
}

// RateLimit answers 429 once the key's budget is spent. Limiter failures let
// the request through.
func RateLimit(l Limiter, keyFunc func(c *fiber.Ctx) string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFunc(c)
		ok, err := l.Allow(c.UserContext(), key)
		if err != nil {
			logger.Warn("rate limiter error", zap.String("key", key), zap.Error(err))
			return c.Next()
		}
		if !ok {
			logger.Warn("rate limit exceeded", zap.String("key", key), zap.String("path", c.Path()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"detail": "rate limit exceeded"})
		}
		return c.Next()
	}
}

func ByIP(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		return "unknown"
	}
	return ip
}

package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"spooky-styles/logger"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const maxLocalLimiters = 10000

// RateLimiter allows limit requests per window per client IP. Counts live
// in Redis as fixed windows so every instance shares them; without Redis
// each instance falls back to an in-process token bucket.
type RateLimiter struct {
	name   string
	limit  int
	window time.Duration
	redis  *redis.Client
	now    func() time.Time

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func NewRateLimiter(name string, client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		name:   name,
		limit:  limit,
		window: window,
		redis:  client,
		now:    time.Now,
		local:  make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := rl.allow(c.Request.Context(), c.ClientIP())
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			abortWithError(c, utils.TooManyRequests("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ctx context.Context, client string) (bool, time.Duration) {
	if rl.redis != nil {
		allowed, retryAfter, err := rl.allowRedis(ctx, client)
		if err == nil {
			return allowed, retryAfter
		}
		logger.FromContext(ctx).Warn().Err(err).Str("limiter", rl.name).Msg("redis rate limit failed, using local limiter")
	}
	return rl.allowLocal(client)
}

func (rl *RateLimiter) allowRedis(ctx context.Context, client string) (bool, time.Duration, error) {
	now := rl.now()
	windowStart := now.Truncate(rl.window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", rl.name, client, windowStart.Unix())

	pipe := rl.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if incr.Val() > int64(rl.limit) {
		return false, windowStart.Add(rl.window).Sub(now), nil
	}
	return true, 0, nil
}

func (rl *RateLimiter) allowLocal(client string) (bool, time.Duration) {
	rl.mu.Lock()
	lim, ok := rl.local[client]
	if !ok {
		if len(rl.local) >= maxLocalLimiters {
			rl.local = make(map[string]*rate.Limiter)
		}
		every := rl.window / time.Duration(rl.limit)
		lim = rate.NewLimiter(rate.Every(every), rl.limit)
		rl.local[client] = lim
	}
	rl.mu.Unlock()

	if lim.Allow() {
		return true, 0
	}
	return false, rl.window / time.Duration(rl.limit)
}

package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/LJTian/FactHub/internal/auth"
	"github.com/gin-gonic/gin"
)

// RateLimiter 按 key 的滑动窗口限流
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time
	calls    int
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}
}

// Allow 记录一次请求；超限时返回 false 以及需要等待的时长
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.calls++
	// 每 256 次调用顺带清理一次过期 key
	if rl.calls%256 == 0 {
		rl.cleanupLocked(now)
	}

	valid := rl.prune(rl.requests[key], now)
	if len(valid) >= rl.rate {
		rl.requests[key] = valid
		return false, valid[0].Add(rl.window).Sub(now)
	}
	rl.requests[key] = append(valid, now)
	return true, 0
}

// Refund 撤销 key 最近一次计数
func (rl *RateLimiter) Refund(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if times := rl.requests[key]; len(times) > 0 {
		rl.requests[key] = times[:len(times)-1]
	}
}

func (rl *RateLimiter) prune(times []time.Time, now time.Time) []time.Time {
	i := 0
	for i < len(times) && now.Sub(times[i]) >= rl.window {
		i++
	}
	return times[i:]
}

func (rl *RateLimiter) cleanupLocked(now time.Time) {
	for key, times := range rl.requests {
		if valid := rl.prune(times, now); len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

// RateLimitMiddleware 优先按登录用户限流，未登录时按客户端 IP。
// 被判为 4xx 的请求（如声明不合法）不占用额度。
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := auth.UserID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if allowed, wait := limiter.Allow(key); !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			fail(c, http.StatusTooManyRequests, "rate_limited",
				fmt.Sprintf("rate limit exceeded: %d requests per %v", limiter.rate, limiter.window))
			return
		}
		c.Next()
		if st := c.Writer.Status(); st >= 400 && st < 500 {
			limiter.Refund(key)
		}
	}
}

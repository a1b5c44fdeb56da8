package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// sweepInterval 两次清理过期记录的最短间隔
const sweepInterval = time.Minute

// attemptLimiter 滑动窗口计数，按 key（客户端 IP）统计
type attemptLimiter struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	attempts    map[string][]time.Time
	lastSweep   time.Time
}

func newAttemptLimiter(maxAttempts int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		attempts:    make(map[string][]time.Time),
	}
}

// allow 记录一次尝试，窗口内已满时返回 false 且不计数
func (l *attemptLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 清理随请求顺带完成，不需要后台 goroutine
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweepLocked(now)
	}

	recent := prune(l.attempts[key], now.Add(-l.window))
	if len(recent) >= l.maxAttempts {
		l.attempts[key] = recent
		return false
	}
	l.attempts[key] = append(recent, now)
	return true
}

// sweep 清理窗口外的记录
func (l *attemptLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(now)
}

func (l *attemptLimiter) sweepLocked(now time.Time) {
	l.lastSweep = now
	cutoff := now.Add(-l.window)
	for key, ts := range l.attempts {
		if recent := prune(ts, cutoff); len(recent) == 0 {
			delete(l.attempts, key)
		} else {
			l.attempts[key] = recent
		}
	}
}

func (l *attemptLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// LoginRateLimit 登录接口限流中间件
// 每 IP 在 window 内最多 maxAttempts 次尝试，超过则返回 429
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	limiter := newAttemptLimiter(maxAttempts, window)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.allow(ip, time.Now()) {
			logrus.WithField("ip", ip).Warn("登录尝试过于频繁")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "Too many login attempts, please try again later",
			})
			return
		}
		c.Next()
	}
}

package http

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

const limiterCleanupInterval = 10 * time.Minute

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	done     chan struct{}
	stopOnce sync.Once
	log      logger.Logger
}

// NewRateLimiter allows requestsPerMin per key with the given burst. A
// non-positive rate disables limiting.
func NewRateLimiter(requestsPerMin, burst int, log logger.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	m := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burst,
		done:     make(chan struct{}),
		log:      log,
	}
	if requestsPerMin <= 0 {
		m.rate = rate.Inf
	}

	go m.cleanupRoutine(limiterCleanupInterval)
	return m
}

func (m *RateLimiter) limiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.limiters[key]
	if !ok {
		l = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = l
	}
	m.lastSeen[key] = time.Now()
	return l
}

func (m *RateLimiter) Allow(key string) bool {
	return m.limiter(key).Allow()
}

func (m *RateLimiter) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(interval)
		case <-m.done:
			return
		}
	}
}

func (m *RateLimiter) cleanup(evictionAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, seen := range m.lastSeen {
		if now.Sub(seen) > evictionAge {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
		}
	}
}

func (m *RateLimiter) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// Middleware limits by client IP.
func (m *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if !m.Allow(key) {
			m.log.Info("Rate limit exceeded", zap.String("key", key), zap.String("path", c.Request.URL.Path))
			c.Error(apperror.NewTooManyRequests("upload rate limit exceeded, try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}

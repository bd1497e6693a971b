package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an idle client's limiter is kept.
const limiterIdleTTL = 10 * time.Minute

// IPRateLimiter stores a token bucket per client IP. Buckets of clients that
// stay quiet for limiterIdleTTL are evicted.
type IPRateLimiter struct {
	ips *cache.Cache
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

// NewIPRateLimiter creates a new IPRateLimiter.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: cache.New(limiterIdleTTL, 2*limiterIdleTTL),
		r:   r,
		b:   b,
	}
}

// GetLimiter returns the rate limiter for an IP address, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if v, ok := i.ips.Get(ip); ok {
		limiter := v.(*rate.Limiter)
		i.ips.Set(ip, limiter, cache.DefaultExpiration)
		return limiter
	}
	limiter := rate.NewLimiter(i.r, i.b)
	i.ips.Set(ip, limiter, cache.DefaultExpiration)
	return limiter
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewIPRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "message": "too many requests"})
			return
		}
		c.Next()
	}
}

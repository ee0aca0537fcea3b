// file: internal/server/middleware/ratelimit.go
// version: 1.1.0
// guid: 2f8b0d4c-5a3e-4671-9c2d-7e1f3b5d9a06

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientIdleTTL is how long a client may stay silent before its bucket
// is dropped and it starts over with a full burst.
const clientIdleTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter throttles requests per client IP with a token bucket.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
}

func NewIPRateLimiter(requestsPerMinute int, burst int) *IPRateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		clients: make(map[string]*clientBucket),
		limit:   rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:   burst,
	}
}

// allow takes one token from the client's bucket, creating it on first
// sight. Idle buckets are swept on the way in.
func (r *IPRateLimiter) allow(ip string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)

	bucket, ok := r.clients[ip]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[ip] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.Allow()
}

func (r *IPRateLimiter) sweepLocked(now time.Time) {
	for ip, bucket := range r.clients {
		if now.Sub(bucket.lastSeen) > clientIdleTTL {
			delete(r.clients, ip)
		}
	}
}

// Middleware rejects over-limit requests with the service's standard
// error envelope.
func (r *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !r.allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":  "rate limit exceeded",
				"code":   "RATE_LIMITED",
				"status": http.StatusTooManyRequests,
			})
			return
		}
		c.Next()
	}
}

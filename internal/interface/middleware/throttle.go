package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/oksasatya/agency-identity/pkg/response"
)

const bucketIdle = 5 * time.Minute

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// Throttle is an in-process token bucket per key. It smooths bursts in
// front of the shared fixed-window limits and keeps working when Redis is
// down.
func Throttle(perSecond float64, burst int, keyFn KeyFunc) gin.HandlerFunc {
	if perSecond <= 0 || burst <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
		calls   int
	)
	return func(c *gin.Context) {
		key := keyFn(c)
		now := time.Now()

		mu.Lock()
		calls++
		if calls%1024 == 0 {
			for k, b := range buckets {
				if now.Sub(b.seen) > bucketIdle {
					delete(buckets, k)
				}
			}
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
			buckets[key] = b
		}
		b.seen = now
		allowed := b.lim.AllowN(now, 1)
		mu.Unlock()

		if !allowed {
			c.Header("Retry-After", "1")
			response.Fail(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// In-memory, per-process rate limit state keyed by client IP.
var (
	clients         = make(map[string]*client)
	window          = time.Minute
	limit           = 60
	lastSweep       time.Time
	rateLimiterLock sync.Mutex
	now             = time.Now
)

// RateLimiter allows up to `limit` requests per client IP per `window`, as a
// token bucket refilled at limit/window with a burst of `limit`. Beyond that
// it answers 429 with an ErrorResponse and a Retry-After in seconds.
//
// Clients idle for longer than a window are evicted; their bucket would be
// full again by then.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		t := now()

		rateLimiterLock.Lock()
		evictIdle(t)
		cl, ok := clients[ip]
		if !ok {
			cl = &client{limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
			clients[ip] = cl
		}
		cl.lastSeen = t
		res := cl.limiter.ReserveN(t, 1)
		delay := res.DelayFrom(t)
		if delay > 0 {
			res.CancelAt(t)
		}
		rateLimiterLock.Unlock()

		if delay > 0 {
			c.Header("Retry-After", strconv.Itoa(retryAfter(delay)))
			AbortWithError(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}

		c.Next()
	}
}

// evictIdle drops clients unseen for a full window; runs at most once per window.
// Caller holds rateLimiterLock.
func evictIdle(t time.Time) {
	if t.Sub(lastSweep) < window {
		return
	}
	lastSweep = t
	for ip, cl := range clients {
		if t.Sub(cl.lastSeen) > window {
			delete(clients, ip)
		}
	}
}

// retryAfter rounds d up to whole seconds, ignoring sub-millisecond drift.
func retryAfter(d time.Duration) int {
	secs := int(math.Ceil(d.Round(time.Millisecond).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

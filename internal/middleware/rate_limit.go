// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/gamevault/gamevault-backend/internal/config"
	"github.com/gamevault/gamevault-backend/internal/utils"
)

const clientIdleEviction = 3 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter hands out one token bucket per client IP and evicts buckets that
// have been idle long enough to be meaningless.
type ipLimiter struct {
	clients map[string]*client
	mtx     sync.Mutex
	rate    rate.Limit
	burst   int
}

func newIPLimiter(r rate.Limit, burst int) *ipLimiter {
	l := &ipLimiter{
		clients: make(map[string]*client),
		rate:    r,
		burst:   burst,
	}

	go l.evictIdle()

	return l
}

func (l *ipLimiter) evictIdle() {
	for {
		time.Sleep(time.Minute)
		l.mtx.Lock()
		for ip, c := range l.clients {
			if time.Since(c.lastSeen) > clientIdleEviction {
				delete(l.clients, ip)
			}
		}
		l.mtx.Unlock()
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = time.Now()

	return c.limiter.Allow()
}

func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				"Too many requests. Please slow down.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimiters groups the marketplace's four throttles. General sits in front
// of everything; auth guards register/login/refresh against credential
// stuffing; checkout guards the purchase and top-up endpoints so a stuck
// client cannot hammer the wallet; upload covers receipt and image posts.
type RateLimiters struct {
	general  *ipLimiter
	auth     *ipLimiter
	checkout *ipLimiter
	upload   *ipLimiter
}

func NewRateLimiters(cfg config.RateLimitConfig) *RateLimiters {
	return &RateLimiters{
		general:  newIPLimiter(rate.Every(time.Second/time.Duration(cfg.GeneralPerSecond)), cfg.GeneralPerSecond),
		auth:     newIPLimiter(rate.Every(time.Minute/time.Duration(cfg.AuthPerMinute)), cfg.AuthPerMinute),
		checkout: newIPLimiter(rate.Every(time.Minute/time.Duration(cfg.CheckoutPerMinute)), cfg.CheckoutPerMinute),
		upload:   newIPLimiter(rate.Every(time.Minute/time.Duration(cfg.UploadPerMinute)), cfg.UploadPerMinute),
	}
}

func (r *RateLimiters) General() gin.HandlerFunc {
	return r.general.middleware()
}

func (r *RateLimiters) Auth() gin.HandlerFunc {
	return r.auth.middleware()
}

func (r *RateLimiters) Checkout() gin.HandlerFunc {
	return r.checkout.middleware()
}

func (r *RateLimiters) Upload() gin.HandlerFunc {
	return r.upload.middleware()
}

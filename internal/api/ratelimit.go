package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// RateLimiter is a per-key sliding window limiter
type RateLimiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time // oldest first
	limit   int
	window  time.Duration
	keyFunc func(r *http.Request) string
	now     func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Limit   int           // Max requests per window
	Window  time.Duration // Time window
	KeyFunc func(r *http.Request) string
}

// NewRateLimiter creates a rate limiter and starts its sweeper. Caller must call Stop.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = GetClientIP
	}

	rl := &RateLimiter{
		hits:    make(map[string][]time.Time),
		limit:   cfg.Limit,
		window:  cfg.Window,
		keyFunc: cfg.KeyFunc,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go rl.sweep()
	return rl
}

// sweep drops keys with no hits inside the window
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, ts := range rl.hits {
				if ts = prune(ts, now.Add(-rl.window)); len(ts) == 0 {
					delete(rl.hits, key)
				} else {
					rl.hits[key] = ts
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop stops the sweeper. Safe to call multiple times.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

// Allow records a hit for the request's key and reports whether it is within the limit
func (rl *RateLimiter) Allow(r *http.Request) bool {
	return rl.AllowKey(rl.keyFunc(r))
}

// AllowKey is Allow for an explicit key. Rejected hits are not recorded.
func (rl *RateLimiter) AllowKey(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	ts := prune(rl.hits[key], now.Add(-rl.window))
	if len(ts) >= rl.limit {
		rl.hits[key] = ts
		return false
	}
	rl.hits[key] = append(ts, now)
	return true
}

// prune drops timestamps before cutoff
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && ts[i].Before(cutoff) {
		i++
	}
	return ts[i:]
}

// Middleware rejects requests over the limit with 429
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClientIP extracts the client IP from a request. chi's RealIP middleware
// has already rewritten r.RemoteAddr from the proxy headers, so only the
// port is stripped here. Reading X-Forwarded-For again would let clients spoof it.
func GetClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// no port, e.g. a unix socket
		return r.RemoteAddr
	}
	return host
}

// RateLimiters holds all rate limiters for the application
type RateLimiters struct {
	Global *RateLimiter
	Mount  *RateLimiter
	View   *RateLimiter
}

// NewRateLimiters creates the standard rate limiters
func NewRateLimiters() *RateLimiters {
	return &RateLimiters{
		// Global: 100 requests per minute per IP
		Global: NewRateLimiter(RateLimitConfig{
			Limit:   100,
			Window:  1 * time.Minute,
			KeyFunc: GetClientIP,
		}),
		// Mount: 10 per minute per IP, each one spends upstream quota
		Mount: NewRateLimiter(RateLimitConfig{
			Limit:   10,
			Window:  1 * time.Minute,
			KeyFunc: GetClientIP,
		}),
		// View: 1200 per minute per mounted view, hover fires once per cell
		View: NewRateLimiter(RateLimitConfig{
			Limit:   1200,
			Window:  1 * time.Minute,
			KeyFunc: ViewID,
		}),
	}
}

// ViewID keys a request by the widget view in its path
func ViewID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// Stop stops all rate limiter cleanup goroutines
func (rls *RateLimiters) Stop() {
	rls.Global.Stop()
	rls.Mount.Stop()
	rls.View.Stop()
}

// MountGuardMiddleware applies the strict mount rate limit and refuses new
// mounts while the registry is full. Returns 429 if rate limited, 503 at capacity.
func MountGuardMiddleware(mountRL *RateLimiter, atCapacity func() bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mountRL.Allow(r) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Widget rate limit exceeded (max 10/min)", http.StatusTooManyRequests)
				return
			}

			if atCapacity != nil && atCapacity() {
				http.Error(w, "Widget capacity full, try again shortly", http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

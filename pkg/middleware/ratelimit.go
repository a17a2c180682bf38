package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter tracks a rate limiter and its last access time
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter limits requests per client IP with periodic cleanup of idle clients
type RateLimiter struct {
	limiters        map[string]*clientLimiter
	mu              sync.Mutex
	rate            rate.Limit
	burst           int
	maxSize         int
	cleanupInterval time.Duration
	trustForwarded  bool
	onReject        func(r *http.Request)
	stopCh          chan struct{}
	stopOnce        sync.Once
}

// RateLimiterOption customizes a RateLimiter
type RateLimiterOption func(*RateLimiter)

// WithTrustedProxy keys clients by the first X-Forwarded-For hop. Only
// enable behind a proxy that overwrites the header.
func WithTrustedProxy() RateLimiterOption {
	return func(rl *RateLimiter) { rl.trustForwarded = true }
}

// WithRejectHook is called for every rejected request, e.g. to count it
func WithRejectHook(fn func(r *http.Request)) RateLimiterOption {
	return func(rl *RateLimiter) { rl.onReject = fn }
}

// NewRateLimiter creates a limiter allowing requestsPerSecond per client
// with the given burst
func NewRateLimiter(requestsPerSecond float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiters:        make(map[string]*clientLimiter),
		rate:            rate.Limit(requestsPerSecond),
		burst:           burst,
		maxSize:         10000,
		cleanupInterval: 5 * time.Minute,
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.cleanup(time.Now())
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.cleanupInterval)
	for key, l := range rl.limiters {
		if l.lastAccess.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// Shutdown stops the cleanup goroutine
func (rl *RateLimiter) Shutdown() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters[key]; ok {
		l.lastAccess = time.Now()
		return l.limiter
	}

	if len(rl.limiters) >= rl.maxSize {
		rl.evictOldest()
	}

	l := &clientLimiter{
		limiter:    rate.NewLimiter(rl.rate, rl.burst),
		lastAccess: time.Now(),
	}
	rl.limiters[key] = l
	return l.limiter
}

func (rl *RateLimiter) evictOldest() {
	var (
		oldestKey  string
		oldestTime time.Time
	)
	for key, l := range rl.limiters {
		if oldestKey == "" || l.lastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = l.lastAccess
		}
	}
	delete(rl.limiters, oldestKey)
}

func (rl *RateLimiter) clientKey(r *http.Request) string {
	if rl.trustForwarded {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware returns HTTP middleware that applies rate limiting
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(rl.clientKey(r)).Allow() {
			if rl.onReject != nil {
				rl.onReject(r)
			}
			retryAfter := 1
			if rl.rate > 0 {
				retryAfter = int(1/float64(rl.rate)) + 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded","code":"RATE_LIMITED"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

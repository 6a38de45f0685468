// Package middleware holds the HTTP middleware stack.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/response"
)

// bucket tracks a fixed-window request count for one IP.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(max int, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

func (b *bucket) expired(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.After(b.resetAt)
}

// limiter owns the buckets of one RateLimit instance, so a strict limit on
// the auth routes does not share counts with the global limit.
type limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	window  time.Duration
}

func newLimiter(window time.Duration) *limiter {
	l := &limiter{buckets: map[string]*bucket{}, window: window}
	go l.evict()
	return l
}

// evict drops buckets whose window has passed, once per window.
func (l *limiter) evict() {
	ticker := time.NewTicker(max(l.window, time.Second))
	defer ticker.Stop()
	for now := range ticker.C {
		l.mu.Lock()
		for ip, b := range l.buckets {
			if b.expired(now) {
				delete(l.buckets, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *limiter) get(ip string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[ip]; ok {
		return b
	}
	b := &bucket{resetAt: time.Now().Add(l.window)}
	l.buckets[ip] = b
	return b
}

// RateLimit returns a middleware that limits each IP to max requests per window.
// Example: middleware.RateLimit(100, time.Minute)
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(window)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.get(clientIP(r)).allow(max, window) {
				response.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop and strips the port from
// RemoteAddr otherwise.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

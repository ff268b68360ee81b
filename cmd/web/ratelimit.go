package main

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const rateLimitWindow = time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter allows a fixed number of requests per client IP per minute.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// newIPRateLimiter returns nil when perMinute is not positive, which disables limiting.
//
// Idle visitors are swept until ctx is done.
func newIPRateLimiter(ctx context.Context, perMinute int) *ipRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	l := &ipRateLimiter{
		mu:       sync.Mutex{},
		visitors: make(map[string]*visitor),
		limit:    rate.Every(rateLimitWindow / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
	}
	go l.sweep(ctx, rateLimitWindow, 3*rateLimitWindow) //nolint:mnd // idle for three windows
	return l
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: time.Time{}}
		l.visitors[ip] = v
	}
	v.lastSeen = l.now()
	l.mu.Unlock()
	return v.limiter.Allow()
}

func (l *ipRateLimiter) sweep(ctx context.Context, interval, expiry time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictIdle(expiry)
		}
	}
}

func (l *ipRateLimiter) evictIdle(expiry time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > expiry {
			delete(l.visitors, ip)
		}
	}
}

// clientIP returns the address of the visitor. With trustProxy the left-most X-Forwarded-For entry set by the
// reverse proxy wins over the proxy's own address.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// allowRequest reports whether the visitor still has checkout budget left. The Retry-After header is set when not.
func (app *application) allowRequest(w http.ResponseWriter, r *http.Request) bool {
	if app.limiter == nil || app.limiter.allow(clientIP(r, app.config.TrustProxy)) {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
	return false
}

// rateLimit rejects page requests exceeding the per-IP checkout budget with 429 Too Many Requests.
func (app *application) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.allowRequest(w, r) {
			app.clientError(w, r, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

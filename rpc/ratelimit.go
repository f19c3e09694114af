package rpc

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const visitorIdle = 5 * time.Minute

// RateLimit bounds how fast one client address may submit transactions.
// A zero RequestsPerMinute disables the limit.
type RateLimit struct {
	RequestsPerMinute float64
	Burst             int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastPrune time.Time
}

func newClientLimiter(cfg RateLimit, now func() time.Time) *clientLimiter {
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:    rate.Limit(cfg.RequestsPerMinute / 60),
		burst:    burst,
		now:      now,
		visitors: make(map[string]*visitor),
	}
}

// allow reports whether client may make one more request now.
func (l *clientLimiter) allow(client string) bool {
	if l == nil {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastPrune) > time.Minute {
		for id, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorIdle {
				delete(l.visitors, id)
			}
		}
		l.lastPrune = now
	}
	v, ok := l.visitors[client]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[client] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// rateLimited rejects requests from clients over their rate. RealIP must run
// first so RemoteAddr reflects the forwarded client.
func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			client = r.RemoteAddr
		}
		if !s.limiter.allow(client) {
			s.metrics.RecordThrottle("rate_limited")
			writeError(w, http.StatusTooManyRequests, -1, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

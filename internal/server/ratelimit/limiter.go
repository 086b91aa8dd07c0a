// Package ratelimit throttles unauthenticated entry points per client address.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleAfter is how long a client may stay silent before its bucket is dropped.
const idleAfter = time.Hour

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key. Both transports share one Limiter
// so a client cannot double its budget by switching protocol.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	now      func() time.Time
}

// New allows requests per window for every key, with the given burst.
// A non-positive requests value disables limiting.
func New(requests int, window time.Duration, burst int) *Limiter {
	l := &Limiter{
		visitors: make(map[string]*visitor),
		every:    rate.Inf,
		burst:    burst,
		now:      time.Now,
	}
	if requests > 0 && window > 0 {
		l.every = rate.Every(window / time.Duration(requests))
	}
	if l.burst <= 0 {
		l.burst = max(requests, 1)
	}
	return l
}

// Allow consumes one token for key and reports whether the request may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *Limiter) evict(now time.Time) {
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > idleAfter {
			delete(l.visitors, k)
		}
	}
}

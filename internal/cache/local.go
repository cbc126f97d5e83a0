package cache

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sweepInterval bounds how often idle buckets are evicted.
const sweepInterval = time.Minute

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter keeps one token bucket per key in process memory.
// Used when no Redis is configured; limits are per replica.
type LocalLimiter struct {
	rate  rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
}

// NewLocalLimiter creates a limiter refilling rps tokens per second up to burst.
func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	rps, burst = normalizeLimits(rps, burst)
	return &LocalLimiter{
		rate:    rate.Limit(rps),
		burst:   burst,
		idle:    bucketTTL(rps, burst),
		now:     time.Now,
		buckets: make(map[string]*localBucket),
	}
}

// Allow consumes one token for key. It never returns an error.
func (l *LocalLimiter) Allow(_ context.Context, key string) (*RateLimitResult, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	var retryAfter time.Duration
	if !allowed {
		retryAfter = time.Duration((1 - tokens) / float64(l.rate) * float64(time.Second))
	}

	remaining := int64(math.Floor(math.Max(tokens, 0)))
	return buildResult(now, allowed, remaining, retryAfter, float64(l.rate), l.burst), nil
}

// Len returns the number of tracked keys.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops buckets idle long enough to have refilled. Caller holds mu.
func (l *LocalLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now

	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, key)
		}
	}
}

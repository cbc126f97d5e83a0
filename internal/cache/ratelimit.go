package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitRegisterPrefix is the Redis key prefix for registration limits.
const rateLimitRegisterPrefix = "keydesk:ratelimit:register:"

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter is a per-key token bucket.
type Limiter interface {
	Allow(ctx context.Context, key string) (*RateLimitResult, error)
}

// tokenBucketScript refills and consumes atomically.
// Returns {allowed, retry_after_ms, remaining_tokens}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- bucket capacity
	local now = tonumber(ARGV[3])       -- current time in milliseconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = math.max(0, now - last_update) / 1000
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate * 1000)
	end

	redis.call('HSET', key, 'tokens', tostring(tokens), 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// RedisLimiter keeps buckets in Redis so every replica shares them.
// Redis failures fail open.
type RedisLimiter struct {
	cache *Cache
	rate  float64
	burst int
	ttl   time.Duration
	now   func() time.Time
}

// NewRedisLimiter creates a limiter refilling rps tokens per second up to burst.
func NewRedisLimiter(c *Cache, rps float64, burst int) *RedisLimiter {
	rps, burst = normalizeLimits(rps, burst)
	return &RedisLimiter{
		cache: c,
		rate:  rps,
		burst: burst,
		ttl:   bucketTTL(rps, burst),
		now:   time.Now,
	}
}

// Allow consumes one token for key. The key is hashed before it reaches Redis.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (*RateLimitResult, error) {
	now := l.now()

	result, err := tokenBucketScript.Run(ctx, l.cache.client,
		[]string{rateLimitRegisterPrefix + hashIP(key)},
		l.rate, l.burst, now.UnixMilli(), int(l.ttl.Seconds()),
	).Int64Slice()
	if err != nil {
		return &RateLimitResult{
			Allowed:   true,
			Limit:     l.burst,
			Remaining: int64(l.burst),
			ResetAt:   now,
		}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(result) != 3 {
		return &RateLimitResult{Allowed: true, Limit: l.burst, ResetAt: now},
			fmt.Errorf("rate limit script: unexpected reply length %d", len(result))
	}

	return buildResult(now, result[0] == 1, result[2], time.Duration(result[1])*time.Millisecond, l.rate, l.burst), nil
}

// buildResult fills in the reset time: when the bucket will be full again.
func buildResult(now time.Time, allowed bool, remaining int64, retryAfter time.Duration, rate float64, burst int) *RateLimitResult {
	missing := float64(int64(burst) - remaining)
	return &RateLimitResult{
		Allowed:    allowed,
		Limit:      burst,
		Remaining:  remaining,
		ResetAt:    now.Add(time.Duration(missing / rate * float64(time.Second))),
		RetryAfter: retryAfter,
	}
}

// bucketTTL is long enough for an idle bucket to refill completely.
func bucketTTL(rate float64, burst int) time.Duration {
	seconds := math.Ceil(float64(burst)/rate) + 1
	return time.Duration(seconds) * time.Second
}

func normalizeLimits(rps float64, burst int) (float64, int) {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return rps, burst
}

// hashIP creates a truncated SHA256 hash of an IP address.
// This provides privacy while maintaining uniqueness.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}

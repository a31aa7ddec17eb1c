package ratelimit

import (
	"sync"
	"time"

	"github.com/shiftdesk/chatdispatch/internal/clock"
)

// TokenBucket is a thread-safe token bucket: tokens refill at a constant
// rate up to capacity, and callers spend them to admit a request. Unlike
// most of this package's reference material it does not call time.Now()
// directly — it takes a clock.Clock, the same injection point every other
// stateful component in this tree (agent, session, timeout, assign,
// bizhours) uses for deterministic tests.
type TokenBucket struct {
	capacity   float64
	refillRate float64

	clock clock.Clock
	mu    sync.Mutex

	tokens     float64
	lastRefill time.Time
}

// NewTokenBucket creates a token bucket backed by the real wall clock.
//   - capacity: maximum number of tokens (burst size)
//   - refillRate: tokens added per second (sustained rate)
func NewTokenBucket(capacity, refillRate float64) *TokenBucket {
	return NewTokenBucketWithClock(capacity, refillRate, clock.RealClock{})
}

// NewTokenBucketWithClock creates a token bucket backed by c, for
// deterministic tests against a clock.Manual.
func NewTokenBucketWithClock(capacity, refillRate float64, c clock.Clock) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		clock:      c,
		tokens:     capacity,
		lastRefill: c.Now(),
	}
}

// Allow consumes one token if available.
func (tb *TokenBucket) Allow() bool {
	return tb.AllowN(1)
}

// AllowN consumes n tokens if that many are available. Useful for
// operations with different costs (e.g. batch requests).
func (tb *TokenBucket) AllowN(n float64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

// Remaining returns the number of tokens currently available.
func (tb *TokenBucket) Remaining() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens
}

// Reset fills the bucket back to capacity.
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = tb.clock.Now()
}

// refill adds tokens for time elapsed since the last refill. Caller must
// hold tb.mu.
func (tb *TokenBucket) refill() {
	now := tb.clock.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tokensToAdd := elapsed * tb.refillRate
	tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
	tb.lastRefill = now
}

// WaitTime returns the duration until a token will be available, or 0 if
// one is available now.
func (tb *TokenBucket) WaitTime() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens >= 1 {
		return 0
	}

	tokensNeeded := 1 - tb.tokens
	secondsNeeded := tokensNeeded / tb.refillRate
	return time.Duration(secondsNeeded * float64(time.Second))
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

package ratelimit

import (
	"sync"
	"time"
)

const (
	// Buckets untouched this long are dropped on the next sweep so the map
	// does not grow without bound on a public endpoint.
	idleEvictAfter = 10 * time.Minute
	sweepEvery     = time.Minute
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter is a keyed token bucket. Buckets are created on first use with the
// capacity and refill rate supplied by the caller, and evicted once idle.
type Limiter struct {
	mu        sync.Mutex
	m         map[string]*bucket
	lastSweep time.Time
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{m: make(map[string]*bucket), lastSweep: time.Now()}
}

// Allow consumes one token for key if available.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepEvery {
		l.evictIdle(now)
		l.lastSweep = now
	}

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// evictIdle drops buckets not seen since the idle window. Caller holds mu.
func (l *Limiter) evictIdle(now time.Time) {
	for k, b := range l.m {
		if now.Sub(b.last) >= idleEvictAfter {
			delete(l.m, k)
		}
	}
}

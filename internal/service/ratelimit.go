package service

import (
	"sync"
	"time"
)

// TokenBucket is an in-memory per-key rate limiter. It guards the token
// endpoint against password guessing. Safe for concurrent use.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64
	idle     time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter allowing bursts of capacity per key,
// refilled at rate tokens per second. Buckets unused for ten minutes are
// dropped by a background sweep until Stop is called.
func NewTokenBucket(rate, capacity float64) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		idle:     10 * time.Minute,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go tb.sweepEvery(5 * time.Minute)
	return tb
}

// Allow reports whether key may proceed, consuming one token if so.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, last: now}
		tb.buckets[key] = b
	}

	b.tokens = min(b.tokens+now.Sub(b.last).Seconds()*tb.rate, tb.capacity)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Len returns the number of tracked keys.
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}

// Stop ends the background sweep. Safe to call more than once.
func (tb *TokenBucket) Stop() {
	tb.stopOnce.Do(func() { close(tb.stop) })
}

func (tb *TokenBucket) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tb.sweep()
		case <-tb.stop:
			return
		}
	}
}

// sweep drops buckets idle for longer than tb.idle.
func (tb *TokenBucket) sweep() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	cutoff := tb.now().Add(-tb.idle)
	for key, b := range tb.buckets {
		if b.last.Before(cutoff) {
			delete(tb.buckets, key)
		}
	}
}

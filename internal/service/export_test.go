package service

import "time"

// SetClock replaces the limiter's time source.
func (tb *TokenBucket) SetClock(now func() time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.now = now
}

// Sweep runs one idle-bucket sweep.
func (tb *TokenBucket) Sweep() {
	tb.sweep()
}

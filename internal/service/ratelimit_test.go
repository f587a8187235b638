package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/inventory/internal/service"
)

func newBucket(t *testing.T, rate, capacity float64) *service.TokenBucket {
	t.Helper()
	tb := service.NewTokenBucket(rate, capacity)
	t.Cleanup(tb.Stop)
	return tb
}

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	tb := newBucket(t, 1, 3)

	for i := 0; i < 3; i++ {
		if !tb.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}
	if tb.Allow("10.0.0.1") {
		t.Fatal("4th request should be denied (bucket empty)")
	}
}

func TestTokenBucket_DifferentKeysAreIndependent(t *testing.T) {
	tb := newBucket(t, 1, 1)

	if !tb.Allow("ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if tb.Allow("ip-a") {
		t.Fatal("ip-a second request should be denied")
	}
	if !tb.Allow("ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	tb := newBucket(t, 2, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tb.SetClock(func() time.Time { return now })

	if !tb.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if tb.Allow("k") {
		t.Fatal("second request should be denied")
	}

	now = now.Add(500 * time.Millisecond)
	if !tb.Allow("k") {
		t.Fatal("request after refill should be allowed")
	}
}

func TestTokenBucket_ZeroRateNeverRefills(t *testing.T) {
	tb := newBucket(t, 0, 2)

	if !tb.Allow("k") || !tb.Allow("k") {
		t.Fatal("first two requests should be allowed")
	}
	if tb.Allow("k") {
		t.Fatal("third request should be denied (no refill)")
	}
}

func TestTokenBucket_SweepDropsIdleKeys(t *testing.T) {
	tb := newBucket(t, 1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tb.SetClock(func() time.Time { return now })

	tb.Allow("old")
	now = now.Add(11 * time.Minute)
	tb.Allow("fresh")
	tb.Sweep()

	if got := tb.Len(); got != 1 {
		t.Fatalf("expected 1 tracked key after sweep, got %d", got)
	}
}

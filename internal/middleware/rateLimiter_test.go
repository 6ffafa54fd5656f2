package middleware

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestIPRateLimiter_ForgetsIdleClients(t *testing.T) {
	clock := time.Unix(0, 0)
	l := NewIPRateLimiter(rate.Limit(1), 1)
	l.idleTTL = time.Minute
	l.now = func() time.Time { return clock }

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	if n := l.tracked(); n != 100 {
		t.Fatalf("tracked = %d, want 100", n)
	}

	clock = clock.Add(30 * time.Second)
	l.Allow("10.0.0.1")
	clock = clock.Add(45 * time.Second)
	l.Allow("10.0.0.200")

	// only the client seen 45s ago and the new one survive the sweep
	if n := l.tracked(); n != 2 {
		t.Errorf("tracked after sweep = %d, want 2", n)
	}
}

func TestIPRateLimiter_LimitsPerClient(t *testing.T) {
	clock := time.Unix(0, 0)
	l := NewIPRateLimiter(rate.Limit(1), 2)
	l.now = func() time.Time { return clock }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst should pass")
	}
	if l.Allow("a") {
		t.Error("third request in the same instant should be limited")
	}
	if !l.Allow("b") {
		t.Error("another client has its own bucket")
	}
	clock = clock.Add(time.Second)
	if !l.Allow("a") {
		t.Error("bucket should refill after a second")
	}
}

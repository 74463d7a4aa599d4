package security

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRateLimiter_AllowWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, time.Minute)

	for i := range 5 {
		if err := rl.Allow("send_message"); err != nil {
			t.Fatalf("Allow(%d) returned error: %v", i, err)
		}
	}

	if err := rl.Allow("send_message"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	_ = rl.Allow("tool")
	now = now.Add(30 * time.Second)
	_ = rl.Allow("tool")

	if err := rl.Allow("tool"); !errors.Is(err, ErrRateLimited) {
		t.Fatal("expected rate limit")
	}

	// First event leaves the window, second one is still inside.
	now = now.Add(31 * time.Second)
	if err := rl.Allow("tool"); err != nil {
		t.Fatalf("expected allow after first event expired, got %v", err)
	}
	if err := rl.Allow("tool"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Minute)

	if err := rl.Allow("a"); err != nil {
		t.Fatal(err)
	}
	if err := rl.Allow("b"); err != nil {
		t.Fatalf("key b should have its own window: %v", err)
	}
	if err := rl.Allow("a"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	var nilLimiter *RateLimiter
	if err := nilLimiter.Allow("x"); err != nil {
		t.Fatalf("nil limiter: %v", err)
	}

	rl := NewRateLimiter(0, time.Minute)
	for range 100 {
		if err := rl.Allow("x"); err != nil {
			t.Fatalf("zero limit: %v", err)
		}
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(50, time.Minute)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("tool") == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Fatalf("allowed = %d, want 50", allowed)
	}
}

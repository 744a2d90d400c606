package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestThrottle_Unlimited(t *testing.T) {
	th := NewThrottle(ThrottleConfig{})
	for i := 0; i < 100; i++ {
		if !th.Allow() {
			t.Fatalf("Allow() = false at %d, want unlimited", i)
		}
	}
	if err := th.Wait(context.Background()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestThrottle_Burst(t *testing.T) {
	th := NewThrottle(ThrottleConfig{Rate: 1, Burst: 2})
	if !th.Allow() || !th.Allow() {
		t.Fatal("Allow() = false within burst")
	}
	if th.Allow() {
		t.Error("Allow() = true beyond burst")
	}
}

func TestThrottle_PauseUntil(t *testing.T) {
	var now atomic.Int64
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now.Store(base.UnixNano())
	th := NewThrottle(ThrottleConfig{Now: func() time.Time { return time.Unix(0, now.Load()) }})

	th.PauseUntil(base.Add(time.Minute))
	th.PauseUntil(base.Add(time.Second)) // earlier, ignored
	if got := th.PausedUntil(); !got.Equal(base.Add(time.Minute)) {
		t.Errorf("PausedUntil() = %v, want %v", got, base.Add(time.Minute))
	}
	if th.Allow() {
		t.Error("Allow() = true while paused")
	}

	now.Store(base.Add(2 * time.Minute).UnixNano())
	if !th.Allow() {
		t.Error("Allow() = false after pause elapsed")
	}
}

func TestThrottle_WaitHonorsDeadline(t *testing.T) {
	th := NewThrottle(ThrottleConfig{})
	th.PauseUntil(time.Now().Add(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := th.Wait(ctx)
	if !errors.Is(err, ErrThrottled) {
		t.Fatalf("Wait() error = %v, want ErrThrottled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Wait() slept instead of failing fast")
	}
}

func TestThrottle_WaitCancelled(t *testing.T) {
	th := NewThrottle(ThrottleConfig{})
	th.PauseUntil(time.Now().Add(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := th.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestThrottle_WaitAfterShortPause(t *testing.T) {
	th := NewThrottle(ThrottleConfig{Rate: 1000})
	th.PauseUntil(time.Now().Add(20 * time.Millisecond))
	start := time.Now()
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Wait() returned after %v, want >= pause", elapsed)
	}
}

package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRefreshingSupplier_SingleRefreshUnderConcurrency(t *testing.T) {
	var calls atomic.Int32
	s := NewRefreshingSupplier(func(ctx context.Context) (Credentials, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return Credentials{Identity: "id", Secret: "s"}, nil
	}, RefreshConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Credentials(context.Background()); err != nil {
				t.Errorf("Credentials() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
}

func TestRefreshingSupplier_CanceledCallerDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	s := NewRefreshingSupplier(func(ctx context.Context) (Credentials, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
		case <-ctx.Done():
			return Credentials{}, ctx.Err()
		}
		return Credentials{Identity: "id", Secret: "s"}, nil
	}, RefreshConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := s.Credentials(ctx)
		leaderErr <- err
	}()
	<-started

	follower := make(chan error, 1)
	go func() {
		_, err := s.Credentials(context.Background())
		follower <- err
	}()

	cancel()
	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Errorf("canceled caller error = %v, want context.Canceled", err)
	}
	close(release)

	if err := <-follower; err != nil {
		t.Errorf("follower Credentials() error = %v, want nil", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
}

func TestRefreshingSupplier_RefreshesInsideWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var calls int
	s := NewRefreshingSupplier(func(ctx context.Context) (Credentials, error) {
		calls++
		return Credentials{Identity: "id", Secret: "s", Expires: now.Add(10 * time.Minute)}, nil
	}, RefreshConfig{
		Window: time.Minute,
		Now:    func() time.Time { return now },
	})

	ctx := context.Background()
	_, _ = s.Credentials(ctx)
	_, _ = s.Credentials(ctx)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 while outside window", calls)
	}

	now = now.Add(9*time.Minute + 30*time.Second)
	_, _ = s.Credentials(ctx)
	if calls != 2 {
		t.Errorf("calls = %d, want 2 inside window", calls)
	}
}

func TestRefreshingSupplier_RetriesTransientFailures(t *testing.T) {
	var calls int
	s := NewRefreshingSupplier(func(ctx context.Context) (Credentials, error) {
		calls++
		if calls < 3 {
			return Credentials{}, errors.New("metadata service unavailable")
		}
		return Credentials{Identity: "id", Secret: "s"}, nil
	}, RefreshConfig{MaxAttempts: 3, InitialInterval: time.Millisecond})

	creds, err := s.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials() error = %v", err)
	}
	if creds.Identity != "id" || calls != 3 {
		t.Errorf("creds = %v, calls = %d; want id after 3 calls", creds, calls)
	}
}

func TestRefreshingSupplier_FallsBackToValidCache(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fail := false
	s := NewRefreshingSupplier(func(ctx context.Context) (Credentials, error) {
		if fail {
			return Credentials{}, errors.New("refresh failed")
		}
		return Credentials{Identity: "id", Secret: "s", Expires: now.Add(2 * time.Minute)}, nil
	}, RefreshConfig{
		Window:          5 * time.Minute,
		MaxAttempts:     1,
		InitialInterval: time.Millisecond,
		Now:             func() time.Time { return now },
	})

	ctx := context.Background()
	if _, err := s.Credentials(ctx); err != nil {
		t.Fatalf("first Credentials() error = %v", err)
	}

	fail = true
	creds, err := s.Credentials(ctx)
	if err != nil {
		t.Fatalf("Credentials() error = %v, want cached fallback", err)
	}
	if creds.Identity != "id" {
		t.Errorf("Identity = %q, want id", creds.Identity)
	}

	now = now.Add(3 * time.Minute)
	if _, err := s.Credentials(ctx); err == nil {
		t.Error("expected error once cached credentials expired")
	}
}

func TestRefreshingSupplier_Invalidate(t *testing.T) {
	var calls int
	s := NewRefreshingSupplier(func(ctx context.Context) (Credentials, error) {
		calls++
		return Credentials{Identity: "id", Secret: "s"}, nil
	}, RefreshConfig{})

	ctx := context.Background()
	_, _ = s.Credentials(ctx)
	s.Invalidate()
	_, _ = s.Credentials(ctx)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

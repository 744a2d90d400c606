package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ThrottleConfig configures a Throttle.
type ThrottleConfig struct {
	// Rate is the number of attempts allowed per second. Zero means no
	// steady-state limit; only pauses apply.
	Rate float64

	// Burst is the maximum burst size.
	// Default: max(1, ceil(Rate))
	Burst int

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// Throttle is an optional limiter shared by concurrent operations. It
// combines a token bucket with a pause that rate-limited responses extend,
// so one operation's reset hint holds back every operation using the
// same throttle.
type Throttle struct {
	limiter *rate.Limiter
	now     func() time.Time

	mu          sync.Mutex
	pausedUntil time.Time
}

// NewThrottle creates a throttle.
func NewThrottle(config ThrottleConfig) *Throttle {
	limit := rate.Inf
	if config.Rate > 0 {
		limit = rate.Limit(config.Rate)
	}
	if config.Burst <= 0 {
		config.Burst = max(1, int(config.Rate+0.999999))
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Throttle{
		limiter: rate.NewLimiter(limit, config.Burst),
		now:     config.Now,
	}
}

// Wait blocks until the pause has elapsed and a token is available,
// or ctx is done. A pause outlasting ctx's deadline fails immediately
// with ErrThrottled.
func (t *Throttle) Wait(ctx context.Context) error {
	for {
		until := t.pausedUntilTime()
		wait := until.Sub(t.now())
		if wait <= 0 {
			break
		}
		if deadline, ok := ctx.Deadline(); ok && deadline.Before(until) {
			return fmt.Errorf("%w: paused until %s", ErrThrottled, until.Format(time.RFC3339))
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return t.limiter.Wait(ctx)
}

// Allow reports whether an attempt may proceed now, consuming a token if so.
func (t *Throttle) Allow() bool {
	if t.now().Before(t.pausedUntilTime()) {
		return false
	}
	return t.limiter.Allow()
}

// PauseUntil holds back all attempts until deadline. Earlier deadlines
// than the current pause are ignored.
func (t *Throttle) PauseUntil(deadline time.Time) {
	t.mu.Lock()
	if deadline.After(t.pausedUntil) {
		t.pausedUntil = deadline
	}
	t.mu.Unlock()
}

// PausedUntil returns the current pause deadline; zero when never paused.
func (t *Throttle) PausedUntil() time.Time {
	return t.pausedUntilTime()
}

func (t *Throttle) pausedUntilTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pausedUntil
}

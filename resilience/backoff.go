package resilience

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy defines how delays increase between retries.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear increases delay linearly.
	BackoffLinear
	// BackoffConstant uses the same delay for all retries.
	BackoffConstant
)

// BackoffConfig configures delays used when the server gives no hint.
type BackoffConfig struct {
	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries, jitter included.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the growth factor for exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy is the backoff strategy.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// DisableJitter turns off the up-to-25% random extension of each delay.
	DisableJitter bool

	// Int64N returns a value in [0, n). Default: math/rand/v2.Int64N.
	Int64N func(n int64) int64
}

// Backoff computes retry delays.
type Backoff struct {
	config BackoffConfig
}

// NewBackoff creates a backoff calculator.
func NewBackoff(config BackoffConfig) *Backoff {
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.Int64N == nil {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		config.Int64N = rand.Int64N
	}
	return &Backoff{config: config}
}

// Delay returns the wait before retry number attempt (1-based: the delay
// after the first failed attempt is Delay(1)).
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	var delay time.Duration
	switch b.config.Strategy {
	case BackoffConstant:
		delay = b.config.InitialDelay
	case BackoffLinear:
		delay = b.config.InitialDelay * time.Duration(attempt)
	default:
		multiplier := math.Pow(b.config.Multiplier, float64(attempt-1))
		f := float64(b.config.InitialDelay) * multiplier
		if f > float64(b.config.MaxDelay) || math.IsInf(f, 0) || math.IsNaN(f) {
			f = float64(b.config.MaxDelay)
		}
		delay = time.Duration(f)
	}

	if delay > b.config.MaxDelay {
		delay = b.config.MaxDelay
	}

	if !b.config.DisableJitter && delay >= 4 {
		delay += time.Duration(b.config.Int64N(int64(delay / 4)))
		if delay > b.config.MaxDelay {
			delay = b.config.MaxDelay
		}
	}
	return delay
}

// Config returns the backoff configuration.
func (b *Backoff) Config() BackoffConfig {
	return b.config
}

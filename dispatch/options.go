package dispatch

import (
	"context"
	"time"

	"github.com/jonwraymond/cloudcore/classify"
	"github.com/jonwraymond/cloudcore/observe"
	"github.com/jonwraymond/cloudcore/resilience"
)

const (
	// DefaultInvocationHeader carries one id per logical operation.
	DefaultInvocationHeader = "X-Invocation-Id"

	// DefaultAttemptHeader carries "attempt=N; max=M" on every attempt.
	DefaultAttemptHeader = "X-Request-Attempt"

	// DefaultMaxErrorBody bounds how much of an error response is read for
	// classification.
	DefaultMaxErrorBody = 64 << 10
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPolicy sets the retry policy.
// Default: resilience.NewPolicy(resilience.PolicyConfig{})
func WithPolicy(p *resilience.Policy) Option {
	return func(d *Dispatcher) {
		d.policy = p
	}
}

// WithClassifier sets the error classifier.
// Default: classify.NewClassifier(classify.ClassifierConfig{})
func WithClassifier(c *classify.Classifier) Option {
	return func(d *Dispatcher) {
		d.classifier = c
	}
}

// WithThrottle shares a throttle with other dispatchers. Rate-limit hints
// seen by this dispatcher pause every holder of the throttle.
func WithThrottle(t *resilience.Throttle) Option {
	return func(d *Dispatcher) {
		d.throttle = t
	}
}

// WithMiddleware sets the observability middleware.
// Default: a middleware built from the logger, or observe.NopMiddleware().
func WithMiddleware(m *observe.Middleware) Option {
	return func(d *Dispatcher) {
		d.middleware = m
	}
}

// WithLogger sets the logger used for per-attempt entries. When no
// middleware is configured the logger also receives completion entries.
func WithLogger(l observe.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithClock sets the clock used for signing and reset hints.
// Default: time.Now
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithSleep replaces the context-aware sleep between attempts.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(d *Dispatcher) {
		d.sleep = sleep
	}
}

// WithAttemptTimeout bounds each attempt, including reading the response.
// Zero means no per-attempt bound.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.attemptTimeout = timeout
	}
}

// WithInvocationHeader sets the header names for the invocation id and the
// attempt counter. An empty name disables that header.
func WithInvocationHeader(invocation, attempt string) Option {
	return func(d *Dispatcher) {
		d.invocationHeader = invocation
		d.attemptHeader = attempt
	}
}

// WithUserAgent sets the User-Agent header on every attempt.
func WithUserAgent(ua string) Option {
	return func(d *Dispatcher) {
		d.userAgent = ua
	}
}

// WithMaxErrorBody bounds how many bytes of an error response are read.
// Default: DefaultMaxErrorBody
func WithMaxErrorBody(n int64) Option {
	return func(d *Dispatcher) {
		d.maxErrorBody = n
	}
}

// WithIDGenerator replaces the invocation id generator.
// Default: uuid.NewString
func WithIDGenerator(gen func() string) Option {
	return func(d *Dispatcher) {
		d.newID = gen
	}
}

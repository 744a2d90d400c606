package resilience

import (
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/cloudcore/classify"
	"github.com/jonwraymond/cloudcore/request"
)

// Outcome is the result of one transport attempt.
type Outcome struct {
	// Err is set when the attempt failed below HTTP (timeout, reset).
	Err error

	// StatusCode is the HTTP status; zero when Err is set.
	StatusCode int

	// Header holds the response headers, used for reset hints.
	Header http.Header

	// Kind is the classification of a non-success response.
	Kind classify.Kind
}

// Success reports whether the attempt produced a non-error HTTP status.
func (o Outcome) Success() bool {
	return o.Err == nil && o.StatusCode >= 100 && o.StatusCode < 400
}

// RateLimited reports whether the server asked the client to slow down.
func (o Outcome) RateLimited() bool {
	return o.Err == nil && (o.StatusCode == http.StatusTooManyRequests || o.Kind == classify.RateLimited)
}

// Reason explains a Decision.
type Reason string

const (
	ReasonSuccess          Reason = "success"
	ReasonTransport        Reason = "transport_failure"
	ReasonNotIdempotent    Reason = "not_idempotent"
	ReasonRateLimited      Reason = "rate_limited"
	ReasonRateLimitTooLong Reason = "rate_limit_wait_exceeds_max"
	ReasonServerBusy       Reason = "server_busy"
	ReasonServerError      Reason = "server_error"
	ReasonNotRetryable     Reason = "not_retryable"
	ReasonExhausted        Reason = "attempts_exhausted"
)

// Decision is the policy's verdict after an attempt.
type Decision struct {
	Retry  bool
	Delay  time.Duration
	Reason Reason

	// Hint is the server-supplied wait, when one was present.
	Hint    time.Duration
	HasHint bool
}

// DefaultIdempotentActionPrefixes mark read-only actions of form-encoded
// APIs that are sent over POST.
var DefaultIdempotentActionPrefixes = []string{"Describe", "List", "Get"}

// PolicyConfig configures a Policy.
type PolicyConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Default: 5
	MaxAttempts int

	// Backoff is used when the server gives no reset hint.
	Backoff BackoffConfig

	// IdempotentActionPrefixes mark embedded actions safe to repeat.
	// Default: DefaultIdempotentActionPrefixes
	IdempotentActionPrefixes []string

	// IsIdempotent overrides the method and action rules entirely.
	IsIdempotent func(req *request.Request) bool

	// RetryStatuses are retried for idempotent requests only.
	// Default: 500, 502, 503, 504
	RetryStatuses []int

	// MinRateLimitDelay is the floor applied to server reset hints.
	// Default: 1s
	MinRateLimitDelay time.Duration

	// MaxRateLimitWait is the longest reset hint the policy will sleep
	// through. Longer hints end the operation with a rate-limit error.
	// Default: 5m
	MaxRateLimitWait time.Duration

	// HintJitter is the fraction of a reset hint that may be shaved off at
	// random so concurrent clients do not return in lockstep.
	// Default: 0.1; negative disables.
	HintJitter float64

	// Int64N returns a value in [0, n). Default: math/rand/v2.Int64N.
	Int64N func(n int64) int64
}

// Policy decides whether a failed attempt is retried and after what delay.
// It is stateless and safe for concurrent use.
type Policy struct {
	config  PolicyConfig
	backoff *Backoff
	retry   map[int]bool
}

// NewPolicy creates a retry policy.
func NewPolicy(config PolicyConfig) *Policy {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.IdempotentActionPrefixes == nil {
		config.IdempotentActionPrefixes = DefaultIdempotentActionPrefixes
	}
	if config.RetryStatuses == nil {
		config.RetryStatuses = []int{500, 502, 503, 504}
	}
	if config.MinRateLimitDelay <= 0 {
		config.MinRateLimitDelay = time.Second
	}
	if config.MaxRateLimitWait <= 0 {
		config.MaxRateLimitWait = 5 * time.Minute
	}
	if config.HintJitter == 0 {
		config.HintJitter = 0.1
	}
	if config.Int64N == nil {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		config.Int64N = rand.Int64N
	}
	if config.Backoff.Int64N == nil {
		config.Backoff.Int64N = config.Int64N
	}

	retry := make(map[int]bool, len(config.RetryStatuses))
	for _, s := range config.RetryStatuses {
		retry[s] = true
	}
	return &Policy{config: config, backoff: NewBackoff(config.Backoff), retry: retry}
}

// Config returns the policy configuration.
func (p *Policy) Config() PolicyConfig {
	return p.config
}

// MaxAttempts returns the attempt budget.
func (p *Policy) MaxAttempts() int {
	return p.config.MaxAttempts
}

// Idempotent reports whether req may be repeated after an ambiguous failure:
// its method is idempotent, or its embedded action is declared read-only.
func (p *Policy) Idempotent(req *request.Request) bool {
	if p.config.IsIdempotent != nil {
		return p.config.IsIdempotent(req)
	}
	if req.Method().IsIdempotent() {
		return true
	}
	action := req.Action()
	if action == "" {
		return false
	}
	for _, prefix := range p.config.IdempotentActionPrefixes {
		if strings.HasPrefix(action, prefix) {
			return true
		}
	}
	return false
}

// Decide returns the verdict for attempt (1-based) of req given its outcome.
//
// Rules, in order: success stops; transport failures retry only idempotent
// requests; rate limits wait for the server's reset hint; busy servers are
// retried for any request; other retryable statuses only for idempotent
// requests. A retryable outcome on the last attempt gives up with
// ReasonExhausted.
func (p *Policy) Decide(attempt int, req *request.Request, out Outcome, now time.Time) Decision {
	if out.Success() {
		return Decision{Reason: ReasonSuccess}
	}

	var d Decision
	switch {
	case out.Err != nil:
		if !p.Idempotent(req) {
			return Decision{Reason: ReasonNotIdempotent}
		}
		d = Decision{Retry: true, Reason: ReasonTransport, Delay: p.backoff.Delay(attempt)}

	case out.RateLimited():
		d = p.rateLimited(attempt, out, now)
		if !d.Retry {
			return d
		}

	case out.Kind == classify.ServerBusy || out.StatusCode == http.StatusServiceUnavailable:
		d = Decision{Retry: true, Reason: ReasonServerBusy, Delay: p.backoff.Delay(attempt)}
		if hint, ok := ParseResetHint(out.Header, now); ok {
			// Busy hints are advisory; never hold the throttle past MaxRateLimitWait.
			hint = min(hint, p.config.MaxRateLimitWait)
			d.Hint, d.HasHint = hint, true
			d.Delay = max(d.Delay, hint)
		}

	case p.retry[out.StatusCode]:
		if !p.Idempotent(req) {
			return Decision{Reason: ReasonNotIdempotent}
		}
		d = Decision{Retry: true, Reason: ReasonServerError, Delay: p.backoff.Delay(attempt)}

	default:
		return Decision{Reason: ReasonNotRetryable}
	}

	if attempt >= p.config.MaxAttempts {
		return Decision{Reason: ReasonExhausted, Hint: d.Hint, HasHint: d.HasHint}
	}
	return d
}

func (p *Policy) rateLimited(attempt int, out Outcome, now time.Time) Decision {
	hint, ok := ParseResetHint(out.Header, now)
	if !ok {
		return Decision{Retry: true, Reason: ReasonRateLimited, Delay: max(p.backoff.Delay(attempt), p.config.MinRateLimitDelay)}
	}

	if hint > p.config.MaxRateLimitWait {
		return Decision{Reason: ReasonRateLimitTooLong, Hint: hint, HasHint: true}
	}

	delay := hint
	if p.config.HintJitter > 0 && delay > 0 {
		if spread := int64(float64(delay) * p.config.HintJitter); spread > 0 {
			delay -= time.Duration(p.config.Int64N(spread))
		}
	}
	delay = max(delay, p.config.MinRateLimitDelay)
	return Decision{Retry: true, Reason: ReasonRateLimited, Delay: delay, Hint: hint, HasHint: true}
}

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/cloudcore/auth"
	"github.com/jonwraymond/cloudcore/classify"
	"github.com/jonwraymond/cloudcore/observe"
	"github.com/jonwraymond/cloudcore/paging"
	"github.com/jonwraymond/cloudcore/request"
	"github.com/jonwraymond/cloudcore/resilience"
)

// ParseFunc turns a successful response into a typed result. It is called
// at most once per invocation and its errors are never retried.
type ParseFunc[T any] func(resp *Response) (T, error)

// Dispatcher runs logical operations against one Transport.
//
// Contract:
//   - Concurrency: safe for concurrent use; invocations share no mutable
//     state except the optional Throttle and the credentials Supplier.
//   - Context: cancellation is checked before every attempt and interrupts
//     the wait between attempts.
//   - Ownership: requests are never mutated; each attempt signs a copy.
type Dispatcher struct {
	transport  Transport
	signer     auth.Signer
	supplier   auth.Supplier
	policy     *resilience.Policy
	classifier *classify.Classifier
	throttle   *resilience.Throttle
	middleware *observe.Middleware
	logger     observe.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
	newID func() string

	attemptTimeout   time.Duration
	invocationHeader string
	attemptHeader    string
	userAgent        string
	maxErrorBody     int64
}

// New creates a Dispatcher. A nil supplier yields empty credentials, which
// only the anonymous signer accepts.
func New(transport Transport, signer auth.Signer, supplier auth.Supplier, opts ...Option) (*Dispatcher, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	if signer == nil {
		return nil, ErrNilSigner
	}
	if supplier == nil {
		supplier = auth.NewStaticSupplier(auth.Credentials{})
	}

	d := &Dispatcher{
		transport:        transport,
		signer:           signer,
		supplier:         supplier,
		invocationHeader: DefaultInvocationHeader,
		attemptHeader:    DefaultAttemptHeader,
		maxErrorBody:     DefaultMaxErrorBody,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.policy == nil {
		d.policy = resilience.NewPolicy(resilience.PolicyConfig{})
	}
	if d.classifier == nil {
		d.classifier = classify.NewClassifier(classify.ClassifierConfig{})
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.sleep == nil {
		d.sleep = sleepWithContext
	}
	if d.newID == nil {
		d.newID = uuid.NewString
	}
	if d.maxErrorBody <= 0 {
		d.maxErrorBody = DefaultMaxErrorBody
	}
	if d.middleware == nil {
		d.middleware = observe.NewMiddleware(nil, nil, d.logger)
	}
	if d.logger == nil {
		d.logger = d.middleware.Logger()
	}
	return d, nil
}

// Policy returns the retry policy in use.
func (d *Dispatcher) Policy() *resilience.Policy {
	return d.policy
}

// Invoke runs req as the logical operation op and parses the successful
// response with parse. A nil parse discards the body.
//
// A DELETE answered with a not-found code that the classifier tolerates
// returns the zero T without calling parse.
func Invoke[T any](ctx context.Context, d *Dispatcher, op observe.Operation, req *request.Request, parse ParseFunc[T]) (T, error) {
	var result T
	if req == nil {
		return result, ErrNilRequest
	}

	run := d.middleware.Wrap(func(ctx context.Context, op observe.Operation) (observe.Result, error) {
		return d.run(ctx, op, req, func(resp *Response) error {
			if parse == nil {
				return nil
			}
			v, err := parse(resp)
			if err != nil {
				return err
			}
			result = v
			return nil
		})
	})

	if _, err := run(ctx, op); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Do runs req and discards the response body.
func (d *Dispatcher) Do(ctx context.Context, op observe.Operation, req *request.Request) error {
	_, err := Invoke[struct{}](ctx, d, op, req, nil)
	return err
}

// Pages adapts one dispatched request per page into a paging.FetchFunc.
// build returns the request for a marker; the empty marker is the first page.
func Pages[T any](d *Dispatcher, op observe.Operation, build func(marker paging.Marker) (*request.Request, error), parse ParseFunc[paging.Page[T]]) paging.FetchFunc[T] {
	return func(ctx context.Context, marker paging.Marker) (paging.Page[T], error) {
		req, err := build(marker)
		if err != nil {
			return paging.Page[T]{}, fmt.Errorf("dispatch: build page request: %w", err)
		}
		return Invoke(ctx, d, op, req, parse)
	}
}

func (d *Dispatcher) run(ctx context.Context, op observe.Operation, req *request.Request, onSuccess func(*Response) error) (observe.Result, error) {
	var res observe.Result
	method, endpoint := req.Method(), req.Endpoint()
	id := d.newID()
	maxAttempts := d.policy.MaxAttempts()
	log := d.logger.WithOperation(op).With(
		observe.F("invocation_id", id),
		observe.F("method", method.String()),
		observe.F("endpoint", endpoint),
	)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return res, d.interrupted(req, err)
		}
		if d.throttle != nil {
			if err := d.throttle.Wait(ctx); err != nil {
				return res, d.interrupted(req, err)
			}
		}

		creds, err := d.supplier.Credentials(ctx)
		if err != nil {
			return res, &SigningError{Method: method, Endpoint: endpoint, Err: err}
		}
		signed, err := d.signer.Sign(d.decorate(req, id, attempt, maxAttempts), creds, d.now())
		if err != nil {
			return res, &SigningError{Method: method, Endpoint: endpoint, Err: err}
		}

		log.Debug(ctx, "sending attempt", observe.F("attempt", attempt))
		out, apiErr, done, err := d.send(ctx, req, signed, &res, onSuccess)
		res.Attempts = attempt
		if done {
			return res, err
		}
		if out.Err != nil && ctx.Err() != nil {
			return res, d.interrupted(req, ctx.Err())
		}

		decision := d.policy.Decide(attempt, req, out, d.now())
		lastErr := d.attemptError(req, attempt, out, apiErr, decision)
		observe.RecordAttempt(ctx, observe.Attempt{
			Number:     attempt,
			StatusCode: out.StatusCode,
			Err:        lastErr,
			Retry:      decision.Retry,
			Reason:     string(decision.Reason),
			DelayMS:    decision.Delay.Milliseconds(),
		})

		if decision.HasHint && d.throttle != nil {
			pause := decision.Hint
			if decision.Retry {
				pause = decision.Delay
			}
			d.throttle.PauseUntil(d.now().Add(pause))
		}
		if apiErr != nil && apiErr.Kind == classify.Unauthorized {
			d.invalidateCredentials()
		}

		if !decision.Retry {
			if decision.Reason == resilience.ReasonExhausted {
				return res, &ExhaustedRetriesError{
					Method:     method,
					Endpoint:   endpoint,
					Attempts:   attempt,
					StatusCode: out.StatusCode,
					Last:       lastErr,
				}
			}
			return res, lastErr
		}
		if body := req.Body(); body != nil && !body.Rewindable() {
			return res, fmt.Errorf("%w: %w", ErrBodyNotRewindable, lastErr)
		}

		log.Warn(ctx, "retrying operation",
			observe.F("attempt", attempt),
			observe.F("delay_ms", decision.Delay.Milliseconds()),
			observe.F("reason", string(decision.Reason)),
			observe.F("status", out.StatusCode),
		)
		if err := d.sleep(ctx, decision.Delay); err != nil {
			return res, d.interrupted(req, err)
		}
	}
}

// send performs one attempt. done reports a terminal result: success, a
// tolerated error, or a parse failure in err.
func (d *Dispatcher) send(ctx context.Context, req, signed *request.Request, res *observe.Result, onSuccess func(*Response) error) (out resilience.Outcome, apiErr *classify.APIError, done bool, err error) {
	if d.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.attemptTimeout)
		defer cancel()
	}

	resp, sendErr := d.transport.Send(ctx, signed)
	if sendErr != nil {
		return resilience.Outcome{Err: sendErr}, nil, false, nil
	}
	if resp == nil {
		return resilience.Outcome{Err: errors.New("transport returned no response")}, nil, false, nil
	}
	defer func() { _ = resp.Release() }()

	res.StatusCode = resp.StatusCode
	out = resilience.Outcome{StatusCode: resp.StatusCode, Header: resp.Header}
	if out.Success() {
		if err := onSuccess(resp); err != nil {
			return out, nil, true, &ParseError{
				Method:     req.Method(),
				Endpoint:   req.Endpoint(),
				StatusCode: resp.StatusCode,
				Err:        err,
			}
		}
		return out, nil, true, nil
	}

	apiErr = d.classifier.Classify(classify.Result{
		Method:     req.Method(),
		Endpoint:   req.Endpoint(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.readBounded(d.maxErrorBody),
	})
	if apiErr == nil {
		return out, nil, true, nil
	}
	out.Kind = apiErr.Kind
	return out, apiErr, false, nil
}

// decorate adds the per-attempt headers to the unsigned request.
func (d *Dispatcher) decorate(req *request.Request, id string, attempt, maxAttempts int) *request.Request {
	if d.invocationHeader != "" {
		req = req.WithHeader(d.invocationHeader, id)
	}
	if d.attemptHeader != "" {
		req = req.WithHeader(d.attemptHeader, fmt.Sprintf("attempt=%d; max=%d", attempt, maxAttempts))
	}
	if d.userAgent != "" {
		req = req.WithHeader("User-Agent", d.userAgent)
	}
	return req
}

func (d *Dispatcher) attemptError(req *request.Request, attempt int, out resilience.Outcome, apiErr *classify.APIError, decision resilience.Decision) error {
	switch {
	case out.Err != nil:
		return &TransportError{Method: req.Method(), Endpoint: req.Endpoint(), Attempt: attempt, Err: out.Err}
	case out.RateLimited():
		e := &RateLimitedError{Method: req.Method(), Endpoint: req.Endpoint(), StatusCode: out.StatusCode, Err: apiErr}
		if decision.HasHint {
			e.RetryAfter = decision.Hint
		}
		return e
	case apiErr != nil:
		return apiErr
	default:
		return nil
	}
}

func (d *Dispatcher) invalidateCredentials() {
	if inv, ok := d.supplier.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
}

func (d *Dispatcher) interrupted(req *request.Request, err error) error {
	return fmt.Errorf("dispatch: %s %s: %w", req.Method(), req.Endpoint(), err)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

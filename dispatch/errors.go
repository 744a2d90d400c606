package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/cloudcore/request"
)

var (
	// ErrNilTransport is returned by New when no Transport is given.
	ErrNilTransport = errors.New("dispatch: transport is nil")

	// ErrNilSigner is returned by New when no Signer is given.
	ErrNilSigner = errors.New("dispatch: signer is nil")

	// ErrNilRequest is returned by Invoke when the request is nil.
	ErrNilRequest = errors.New("dispatch: request is nil")

	// ErrBodyNotRewindable is returned when a retry is needed but the request
	// body is a stream that was already consumed.
	ErrBodyNotRewindable = errors.New("dispatch: request body cannot be resent")
)

// TransportError is an I/O failure that was not retried, either because the
// request is not idempotent or because the failure was terminal.
type TransportError struct {
	Method   request.Method
	Endpoint string
	Attempt  int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("dispatch: %s %s: transport failure on attempt %d: %v", e.Method, e.Endpoint, e.Attempt, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ErrorKind returns "transport".
func (e *TransportError) ErrorKind() string { return "transport" }

// SigningError wraps a credentials or signing failure. It is never retried.
type SigningError struct {
	Method   request.Method
	Endpoint string
	Err      error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("dispatch: %s %s: signing failed: %v", e.Method, e.Endpoint, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// ErrorKind returns "signing".
func (e *SigningError) ErrorKind() string { return "signing" }

// RateLimitedError reports a throttling response. RetryAfter is the server's
// reset hint, zero when none was sent. Err is the classified response.
type RateLimitedError struct {
	Method     request.Method
	Endpoint   string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitedError) Error() string {
	msg := fmt.Sprintf("dispatch: %s %s: rate limited (status %d)", e.Method, e.Endpoint, e.StatusCode)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// ErrorKind returns "rate_limited".
func (e *RateLimitedError) ErrorKind() string { return "rate_limited" }

// ExhaustedRetriesError is returned once the attempt budget is spent. Last is
// the error of the final attempt: a *TransportError, *RateLimitedError or
// *classify.APIError.
type ExhaustedRetriesError struct {
	Method     request.Method
	Endpoint   string
	Attempts   int
	StatusCode int
	Last       error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("dispatch: %s %s: gave up after %d attempts: %v", e.Method, e.Endpoint, e.Attempts, e.Last)
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.Last }

// ErrorKind returns "exhausted_retries".
func (e *ExhaustedRetriesError) ErrorKind() string { return "exhausted_retries" }

// ParseError wraps a failure of the caller's response parser.
type ParseError struct {
	Method     request.Method
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dispatch: %s %s: parse response (status %d): %v", e.Method, e.Endpoint, e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrorKind returns "parse".
func (e *ParseError) ErrorKind() string { return "parse" }

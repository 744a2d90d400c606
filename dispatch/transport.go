package dispatch

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/jonwraymond/cloudcore/request"
)

// Transport sends one signed request.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: Send must honor cancellation and deadlines.
//   - Errors: a non-nil error means no HTTP response was received. HTTP error
//     statuses are returned as responses, not errors.
//   - Ownership: the caller releases the returned Response.
type Transport interface {
	Send(ctx context.Context, req *request.Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *request.Request) (*Response, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, req *request.Request) (*Response, error) {
	return f(ctx, req)
}

// maxDrain bounds how much of an unread body Release discards before closing.
const maxDrain = 256 << 10

// Response is the HTTP result of one attempt.
type Response struct {
	StatusCode int
	Header     http.Header

	// Body is the response payload. It may be nil.
	Body io.ReadCloser

	// ContentLength is -1 when unknown.
	ContentLength int64

	release sync.Once
}

// Release drains a bounded amount of the body and closes it so the
// underlying connection can be reused. It is safe to call more than once.
func (r *Response) Release() error {
	if r == nil || r.Body == nil {
		return nil
	}
	var err error
	r.release.Do(func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, maxDrain))
		err = r.Body.Close()
	})
	return err
}

// readBounded reads at most limit bytes of the body.
func (r *Response) readBounded(limit int64) []byte {
	if r.Body == nil {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(r.Body, limit))
	return data
}

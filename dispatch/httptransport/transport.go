// Package httptransport implements dispatch.Transport on net/http.
//
// The adapter sends exactly one HTTP exchange per call. It never retries and
// never follows redirects, so every attempt the dispatcher makes is signed
// and observed.
package httptransport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonwraymond/cloudcore/dispatch"
	"github.com/jonwraymond/cloudcore/request"
)

// ErrBodyConsumed is returned when a one-shot request body was already sent.
var ErrBodyConsumed = errors.New("httptransport: request body already consumed")

// Config configures a Transport.
type Config struct {
	// Client sends requests. Its CheckRedirect is respected when set.
	// Default: a client on a clone of http.DefaultTransport that does not
	// follow redirects.
	Client *http.Client

	// ResponseHeaderTimeout bounds the wait for response headers when the
	// default client is used. Zero means no bound.
	ResponseHeaderTimeout time.Duration

	// MaxIdleConnsPerHost sets idle connection reuse for the default client.
	// Default: 16
	MaxIdleConnsPerHost int
}

// Transport sends canonical requests with net/http.
type Transport struct {
	client *http.Client
}

// New creates a Transport.
func New(config Config) *Transport {
	client := config.Client
	if client == nil {
		if config.MaxIdleConnsPerHost <= 0 {
			config.MaxIdleConnsPerHost = 16
		}
		rt := http.DefaultTransport.(*http.Transport).Clone()
		rt.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
		rt.ResponseHeaderTimeout = config.ResponseHeaderTimeout
		client = &http.Client{
			Transport: rt,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &Transport{client: client}
}

// Send implements dispatch.Transport. HTTP error statuses are returned as
// responses; only I/O failures are errors.
func (t *Transport) Send(ctx context.Context, req *request.Request) (*dispatch.Response, error) {
	httpReq, err := NewHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	return &dispatch.Response{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
	}, nil
}

// NewHTTPRequest converts a canonical request into an *http.Request bound
// to ctx. Stream bodies are passed through without buffering.
func NewHTTPRequest(ctx context.Context, req *request.Request) (*http.Request, error) {
	var body io.Reader
	if b := req.Body(); b != nil {
		if b.Consumed() {
			return nil, ErrBodyConsumed
		}
		r, err := b.Open()
		if err != nil {
			return nil, fmt.Errorf("httptransport: open body: %w", err)
		}
		body = r
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method().String(), req.URL(), body)
	if err != nil {
		return nil, fmt.Errorf("httptransport: build request: %w", err)
	}
	httpReq.Header = req.Header().HTTP()
	if host := httpReq.Header.Get("Host"); host != "" {
		httpReq.Host = host
		httpReq.Header.Del("Host")
	}

	if b := req.Body(); b != nil {
		httpReq.ContentLength = b.Length()
		if data, ok := b.Bytes(); ok {
			httpReq.GetBody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(data)), nil
			}
		}
		if b.ContentType() != "" && httpReq.Header.Get("Content-Type") == "" {
			httpReq.Header.Set("Content-Type", b.ContentType())
		}
		if httpReq.ContentLength == 0 {
			httpReq.Body = http.NoBody
		}
	}
	return httpReq, nil
}

var _ dispatch.Transport = (*Transport)(nil)

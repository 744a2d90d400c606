package request

import "errors"

// Sentinel errors for request construction and body access.
var (
	ErrEmptyMethod       = errors.New("request: method is required")
	ErrInvalidMethod     = errors.New("request: method is not a valid HTTP verb")
	ErrMalformedEndpoint = errors.New("request: malformed endpoint")
	ErrBodyConsumed      = errors.New("request: body stream already consumed")
	ErrBodyNotSeekable   = errors.New("request: body stream is not seekable")
)

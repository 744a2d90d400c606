package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/cloudcore/request"
)

// APIError is a provider error surfaced after classification.
//
// It carries the HTTP status, provider code and message, and the request
// method and endpoint. It never carries headers, query strings or bodies
// of the request, so credentials cannot leak through it.
type APIError struct {
	Kind       Kind
	StatusCode int
	Code       string
	Message    string
	Method     request.Method
	Endpoint   string
}

// Error implements error.
func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "classify: %s (status %d", e.Kind, e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, ", code %s", e.Code)
	}
	b.WriteString(")")
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Method != "" || e.Endpoint != "" {
		fmt.Fprintf(&b, " [%s %s]", e.Method, e.Endpoint)
	}
	return b.String()
}

// KindOf returns the kind of the first APIError in err's chain, or
// Unclassified when there is none.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return Unclassified
}

// IsKind reports whether err wraps an APIError of kind k.
func IsKind(err error, k Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// ErrorKind returns the kind name, used as a telemetry label.
func (e *APIError) ErrorKind() string {
	return e.Kind.String()
}

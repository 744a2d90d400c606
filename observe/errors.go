package observe

import (
	"errors"
	"strings"
)

// Configuration errors.
var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct indicates Tracing.SamplePct is not in [0.0, 1.0].
	ErrInvalidSamplePct = errors.New("observe: sample percentage must be between 0.0 and 1.0")

	// ErrInvalidTracingExporter indicates an unknown tracing exporter name.
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")

	// ErrInvalidMetricsExporter indicates an unknown metrics exporter name.
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")

	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("observe: invalid log level")
)

// Runtime errors.
var (
	// ErrNilObserver indicates a nil Observer was provided.
	ErrNilObserver = errors.New("observe: observer is nil")

	// ErrMissingOperationName indicates Operation.Name is empty.
	ErrMissingOperationName = errors.New("observe: operation name is required")
)

// RedactedFields lists substrings of field keys whose values are never
// written to logs.
var RedactedFields = []string{
	"authorization",
	"signature",
	"secret",
	"token",
	"credential",
	"password",
	"api_key",
	"apikey",
}

func isRedactedField(key string) bool {
	k := strings.ToLower(key)
	for _, r := range RedactedFields {
		if strings.Contains(k, r) {
			return true
		}
	}
	return false
}

// KindedError is implemented by errors that carry a stable category label,
// used as the error.kind metric and span attribute.
type KindedError interface {
	error
	ErrorKind() string
}

// ErrorKind returns the category label of err, "error" when err carries
// none, or "" when err is nil.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var k KindedError
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return "error"
}

package observe

import (
	"context"
	"time"
)

// OperationFunc runs one logical operation and reports its result.
type OperationFunc func(ctx context.Context, op Operation) (Result, error)

// Middleware wraps operations with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe OperationFunc.
//   - Context: the span is carried in the context passed to the wrapped func.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
	now     func() time.Time
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger, now: time.Now}
}

// NopMiddleware returns a middleware that only runs the wrapped function.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Wrap wraps fn with a span, metrics, and a completion log entry.
func (m *Middleware) Wrap(fn OperationFunc) OperationFunc {
	return func(ctx context.Context, op Operation) (Result, error) {
		ctx, span := m.tracer.StartSpan(ctx, op)
		start := m.now()

		res, err := fn(ctx, op)

		duration := m.now().Sub(start)
		m.tracer.EndSpan(span, res, err)
		m.metrics.RecordOperation(ctx, op, res, duration, err)

		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
			{Key: "attempts", Value: res.Attempts},
		}
		if res.StatusCode != 0 {
			fields = append(fields, Field{Key: "status", Value: res.StatusCode})
		}

		opLogger := m.logger.WithOperation(op)
		if err != nil {
			fields = append(fields,
				Field{Key: "error", Value: err.Error()},
				Field{Key: "error_kind", Value: ErrorKind(err)},
			)
			opLogger.Error(ctx, "operation failed", fields...)
		} else {
			opLogger.Info(ctx, "operation completed", fields...)
		}
		return res, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

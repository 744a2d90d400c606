package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricOperations = "dispatch.operations"
	MetricErrors     = "dispatch.errors"
	MetricAttempts   = "dispatch.attempts"
	MetricDuration   = "dispatch.duration_ms"
)

// Metrics records per-operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	RecordOperation(ctx context.Context, op Operation, res Result, duration time.Duration, err error)
}

type metricsImpl struct {
	operations metric.Int64Counter
	errors     metric.Int64Counter
	attempts   metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewMetrics creates Metrics instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	operations, err := meter.Int64Counter(MetricOperations,
		metric.WithDescription("Logical operations dispatched"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Logical operations that ended in error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}
	attempts, err := meter.Int64Counter(MetricAttempts,
		metric.WithDescription("Transport attempts, including retries"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Operation duration including retry delays"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &metricsImpl{operations: operations, errors: errs, attempts: attempts, duration: duration}, nil
}

func (m *metricsImpl) RecordOperation(ctx context.Context, op Operation, res Result, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{attribute.String("operation.id", op.ID())}
	if op.Provider != "" {
		attrs = append(attrs, attribute.String("cloud.provider", op.Provider))
	}
	opt := metric.WithAttributes(attrs...)

	m.operations.Add(ctx, 1, opt)
	if res.Attempts > 0 {
		m.attempts.Add(ctx, int64(res.Attempts), opt)
	}
	if err != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("error.kind", ErrorKind(err)))...))
	}
	m.duration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordOperation(context.Context, Operation, Result, time.Duration, error) {}

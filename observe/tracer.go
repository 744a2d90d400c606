package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Tracer wraps OpenTelemetry tracing with operation-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one logical operation.
	StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span)

	// EndSpan records the result and error, then ends the span.
	EndSpan(span trace.Span, res Result, err error)
}

// Attempt describes one transport attempt inside an operation span.
type Attempt struct {
	Number     int
	StatusCode int
	Err        error
	Retry      bool
	Reason     string
	DelayMS    int64
}

// RecordAttempt adds an "attempt" event to the span in ctx, if any.
func RecordAttempt(ctx context.Context, a Attempt) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.Int("attempt", a.Number),
		attribute.Bool("retry", a.Retry),
	}
	if a.StatusCode != 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", a.StatusCode))
	}
	if a.Reason != "" {
		attrs = append(attrs, attribute.String("reason", a.Reason))
	}
	if a.Retry {
		attrs = append(attrs, attribute.Int64("delay_ms", a.DelayMS))
	}
	if a.Err != nil {
		attrs = append(attrs, attribute.String("error.kind", ErrorKind(a.Err)))
	}
	span.AddEvent("attempt", trace.WithAttributes(attrs...))
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a client span with the operation as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("operation.id", op.ID()),
		attribute.String("operation.name", op.Name),
	}
	if op.Provider != "" {
		attrs = append(attrs, attribute.String("cloud.provider", op.Provider))
	}
	if op.Service != "" {
		attrs = append(attrs, attribute.String("cloud.service", op.Service))
	}

	return t.tracer.Start(ctx, op.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, res Result, err error) {
	span.SetAttributes(attribute.Int("dispatch.attempts", res.Attempts))
	if res.StatusCode != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", ErrorKind(err)))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span) {
	return t.noop.Start(ctx, op.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ Result, _ error) {
	span.End()
}

package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type kindedErr struct{ kind string }

func (e kindedErr) Error() string     { return "kinded: " + e.kind }
func (e kindedErr) ErrorKind() string { return e.kind }

func newRecordingTracer() (Tracer, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return NewTracer(tp.Tracer("test")), rec
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOperation_SpanName(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{Operation{Provider: "aws", Service: "s3", Name: "PutObject"}, "dispatch.aws.s3.PutObject"},
		{Operation{Service: "compute", Name: "ListServers"}, "dispatch.compute.ListServers"},
		{Operation{Name: "Get"}, "dispatch.Get"},
	}
	for _, tt := range tests {
		if got := tt.op.SpanName(); got != tt.want {
			t.Errorf("SpanName() = %q, want %q", got, tt.want)
		}
	}
	if err := (Operation{}).Validate(); !errors.Is(err, ErrMissingOperationName) {
		t.Errorf("Validate() = %v, want ErrMissingOperationName", err)
	}
}

func TestTracer_SpanLifecycle(t *testing.T) {
	tracer, rec := newRecordingTracer()
	op := Operation{Provider: "aws", Service: "ec2", Name: "DescribeInstances"}

	ctx, span := tracer.StartSpan(context.Background(), op)
	RecordAttempt(ctx, Attempt{Number: 1, StatusCode: 503, Retry: true, Reason: "server_busy", DelayMS: 100})
	RecordAttempt(ctx, Attempt{Number: 2, StatusCode: 200})
	tracer.EndSpan(span, Result{Attempts: 2, StatusCode: 200}, nil)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "dispatch.aws.ec2.DescribeInstances" {
		t.Errorf("Name() = %q", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("Status = %v, want Ok", s.Status())
	}
	if v, ok := attrValue(s.Attributes(), "dispatch.attempts"); !ok || v.AsInt64() != 2 {
		t.Errorf("dispatch.attempts = %v", v.Emit())
	}
	if v, ok := attrValue(s.Attributes(), "cloud.provider"); !ok || v.AsString() != "aws" {
		t.Errorf("cloud.provider = %v", v.Emit())
	}
	if len(s.Events()) != 2 || s.Events()[0].Name != "attempt" {
		t.Fatalf("events = %v", s.Events())
	}
	if v, ok := attrValue(s.Events()[0].Attributes, "reason"); !ok || v.AsString() != "server_busy" {
		t.Errorf("first attempt reason = %v", v.Emit())
	}
}

func TestTracer_EndSpanError(t *testing.T) {
	tracer, rec := newRecordingTracer()
	_, span := tracer.StartSpan(context.Background(), Operation{Name: "PutObject"})
	tracer.EndSpan(span, Result{Attempts: 1, StatusCode: 409}, kindedErr{kind: "conflict"})

	s := rec.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("Status = %v, want Error", s.Status())
	}
	if v, _ := attrValue(s.Attributes(), "error.kind"); v.AsString() != "conflict" {
		t.Errorf("error.kind = %q, want conflict", v.AsString())
	}
}

func TestErrorKind(t *testing.T) {
	if ErrorKind(nil) != "" {
		t.Error("ErrorKind(nil) != \"\"")
	}
	if got := ErrorKind(errors.New("x")); got != "error" {
		t.Errorf("ErrorKind(plain) = %q, want error", got)
	}
	wrapped := errors.Join(errors.New("ctx"), kindedErr{kind: "not_found"})
	if got := ErrorKind(wrapped); got != "not_found" {
		t.Errorf("ErrorKind(wrapped) = %q, want not_found", got)
	}
}

func TestRecordAttempt_NoSpan(t *testing.T) {
	RecordAttempt(context.Background(), Attempt{Number: 1})
	noop := newNoopTracer()
	ctx, span := noop.StartSpan(context.Background(), Operation{Name: "x"})
	RecordAttempt(ctx, Attempt{Number: 1, Err: errors.New("x")})
	noop.EndSpan(span, Result{}, nil)
}

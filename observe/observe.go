package observe

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/cloudcore/observe/exporters"
)

// Config holds all configuration for the Observer.
type Config struct {
	ServiceName string
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig

	// SetGlobal installs the providers as the otel globals.
	SetGlobal bool
}

// TracingConfig configures the tracing subsystem.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // otlp|jaeger|stdout|none
	SamplePct float64 // 0.0-1.0
	Endpoint  string  // overrides OTEL_EXPORTER_OTLP_* for otlp
	Insecure  bool
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // otlp|prometheus|stdout|none
	Endpoint string
	Insecure bool
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	Enabled bool
	Level   string    // debug|info|warn|error
	Writer  io.Writer // default os.Stderr
}

var validTracingExporters = map[string]bool{"otlp": true, "jaeger": true, "stdout": true, "none": true, "": true}

var validMetricsExporters = map[string]bool{"otlp": true, "prometheus": true, "stdout": true, "none": true, "": true}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if c.Tracing.Enabled {
		if !validTracingExporters[c.Tracing.Exporter] {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.Tracing.Exporter)
		}
		if c.Tracing.SamplePct < 0 || c.Tracing.SamplePct > 1.0 {
			return fmt.Errorf("%w: got %f", ErrInvalidSamplePct, c.Tracing.SamplePct)
		}
	}
	if c.Metrics.Enabled && !validMetricsExporters[c.Metrics.Exporter] {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.Metrics.Exporter)
	}
	if c.Logging.Enabled && !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	return nil
}

// Observer provides access to telemetry primitives.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Shutdown must honor cancellation/deadlines.
// - Errors: Shutdown returns all provider shutdown errors joined.
type Observer interface {
	Tracer() trace.Tracer
	Meter() metric.Meter
	Logger() Logger
	Shutdown(ctx context.Context) error
}

// Logger is a minimal structured logging interface.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
// - Security: values of keys matching RedactedFields are never written.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	WithOperation(op Operation) Logger
	With(fields ...Field) Logger
}

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for Field{Key: key, Value: value}.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// ScopeName is the instrumentation scope of dispatch spans and metrics.
const ScopeName = "github.com/jonwraymond/cloudcore/dispatch"

type observer struct {
	tracer   trace.Tracer
	meter    metric.Meter
	logger   Logger
	shutdown []func(context.Context) error
}

// NewObserver sets up the tracing and metrics SDK providers and the logger
// described by cfg. Disabled subsystems get no-op implementations. On error
// every provider created so far is shut down.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	obs := &observer{
		tracer: tracenoop.NewTracerProvider().Tracer(ScopeName),
		meter:  noop.NewMeterProvider().Meter(ScopeName),
		logger: newConfiguredLogger(cfg.Logging),
	}
	scope := []trace.TracerOption{trace.WithInstrumentationVersion(cfg.Version)}

	if cfg.Tracing.Enabled {
		tp, err := newTracerProvider(ctx, cfg.Tracing, res)
		if err != nil {
			return nil, fmt.Errorf("observe: tracing: %w", err)
		}
		obs.shutdown = append(obs.shutdown, tp.Shutdown)
		obs.tracer = tp.Tracer(ScopeName, scope...)
		if cfg.SetGlobal {
			otel.SetTracerProvider(tp)
		}
	}

	if cfg.Metrics.Enabled {
		mp, err := newMeterProvider(ctx, cfg.Metrics, res)
		if err != nil {
			_ = obs.Shutdown(ctx)
			return nil, fmt.Errorf("observe: metrics: %w", err)
		}
		obs.shutdown = append(obs.shutdown, mp.Shutdown)
		obs.meter = mp.Meter(ScopeName, metric.WithInstrumentationVersion(cfg.Version))
		if cfg.SetGlobal {
			otel.SetMeterProvider(mp)
		}
	}

	return obs, nil
}

func newConfiguredLogger(cfg LoggingConfig) Logger {
	switch {
	case !cfg.Enabled:
		return noopLogger{}
	case cfg.Writer != nil:
		return NewLoggerWithWriter(cfg.Level, cfg.Writer)
	default:
		return NewLogger(cfg.Level)
	}
}

// samplerFor maps a sampling fraction onto a parent-based sampler so that
// retries inside a sampled caller trace are always recorded.
func samplerFor(pct float64) sdktrace.Sampler {
	root := sdktrace.TraceIDRatioBased(pct)
	switch {
	case pct >= 1:
		root = sdktrace.AlwaysSample()
	case pct <= 0:
		root = sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(root)
}

func newTracerProvider(ctx context.Context, cfg TracingConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exp, err := exporters.NewTracingExporter(ctx, cfg.Exporter, exporters.Options{
		Endpoint: cfg.Endpoint,
		Insecure: cfg.Insecure,
	})
	if err != nil {
		return nil, err
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplePct)),
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func newMeterProvider(ctx context.Context, cfg MetricsConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Exporter, exporters.Options{
		Endpoint: cfg.Endpoint,
		Insecure: cfg.Insecure,
	})
	if err != nil {
		return nil, err
	}
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

func (o *observer) Tracer() trace.Tracer { return o.tracer }
func (o *observer) Meter() metric.Meter  { return o.meter }
func (o *observer) Logger() Logger       { return o.logger }

// Shutdown flushes and stops the providers, newest first.
func (o *observer) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(o.shutdown) - 1; i >= 0; i-- {
		if err := o.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	o.shutdown = nil
	return errors.Join(errs...)
}

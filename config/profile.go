package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/cloudcore/auth"
	"github.com/jonwraymond/cloudcore/classify"
	"github.com/jonwraymond/cloudcore/observe"
	"github.com/jonwraymond/cloudcore/request"
)

// Profile describes one provider/service client.
type Profile struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`
	Service  string `yaml:"service"`
	Endpoint string `yaml:"endpoint"`

	// Region is passed to region-scoped signers when their options omit it.
	Region string `yaml:"region"`

	Signer      SignerConfig      `yaml:"signer"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Retry       RetryConfig       `yaml:"retry"`
	Throttle    ThrottleConfig    `yaml:"throttle"`
	Transport   TransportConfig   `yaml:"transport"`
	Logging     LoggingConfig     `yaml:"logging"`
	Observe     ObserveConfig     `yaml:"observe"`

	// ErrorTable names the classification table: default, aws, atmos,
	// openstack.
	ErrorTable string `yaml:"error_table"`
}

// SignerConfig selects a signer from auth.DefaultRegistry.
type SignerConfig struct {
	// Kind is the registered signer name.
	// Default: anonymous
	Kind    string         `yaml:"kind"`
	Options map[string]any `yaml:"options"`
}

// CredentialsConfig holds credential references and caching.
type CredentialsConfig struct {
	auth.CredentialRefs `yaml:",inline"`

	// Cache memoizes resolved credentials until the server rejects them.
	Cache bool `yaml:"cache"`
}

// RetryConfig maps onto resilience.PolicyConfig. Zero values keep the
// policy defaults.
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	Strategy          string        `yaml:"strategy"` // exponential|linear|constant
	InitialDelay      time.Duration `yaml:"initial_delay"`
	MaxDelay          time.Duration `yaml:"max_delay"`
	Multiplier        float64       `yaml:"multiplier"`
	DisableJitter     bool          `yaml:"disable_jitter"`
	MinRateLimitDelay time.Duration `yaml:"min_rate_limit_delay"`
	MaxRateLimitWait  time.Duration `yaml:"max_rate_limit_wait"`
	IdempotentActions []string      `yaml:"idempotent_actions"`
	RetryStatuses     []int         `yaml:"retry_statuses"`
}

// ThrottleConfig enables a shared limiter when Rate is positive.
type ThrottleConfig struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// TransportConfig tunes the HTTP transport and per-attempt headers.
type TransportConfig struct {
	AttemptTimeout        time.Duration `yaml:"attempt_timeout"`
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`
	UserAgent             string        `yaml:"user_agent"`
}

// LoggingConfig selects the structured logger level. An empty level
// disables logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
}

// ObserveConfig enables OpenTelemetry export for the profile.
type ObserveConfig struct {
	ServiceName     string  `yaml:"service_name"`
	TracingExporter string  `yaml:"tracing_exporter"` // otlp|jaeger|stdout|none
	SamplePct       float64 `yaml:"sample_pct"`
	MetricsExporter string  `yaml:"metrics_exporter"` // otlp|prometheus|stdout|none
	Endpoint        string  `yaml:"endpoint"`
	Insecure        bool    `yaml:"insecure"`
}

var validStrategies = map[string]bool{"": true, "exponential": true, "linear": true, "constant": true}

var validLogLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}

// Load reads and validates a profile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile. Unknown keys are rejected.
func Parse(data []byte) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingProvider
		}
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) applyDefaults() {
	if p.Signer.Kind == "" {
		p.Signer.Kind = "anonymous"
	}
	if p.Name == "" {
		p.Name = p.Provider
		if p.Service != "" {
			p.Name += "-" + p.Service
		}
	}
}

// Validate checks the profile without resolving credentials.
func (p *Profile) Validate() error {
	if p.Provider == "" {
		return ErrMissingProvider
	}
	if p.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if _, err := request.New(request.MethodGet, p.Endpoint); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}

	kind := p.Signer.Kind
	if kind == "" {
		kind = "anonymous"
	}
	if !registered(kind) {
		return fmt.Errorf("%w: %q", ErrUnknownSigner, kind)
	}
	if _, ok := classify.TableByName(p.ErrorTable); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownErrorTable, p.ErrorTable)
	}

	r := p.Retry
	switch {
	case r.MaxAttempts < 0:
		return fmt.Errorf("%w: max_attempts must not be negative", ErrInvalidRetry)
	case !validStrategies[r.Strategy]:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidRetry, r.Strategy)
	case r.InitialDelay < 0 || r.MaxDelay < 0 || r.MinRateLimitDelay < 0 || r.MaxRateLimitWait < 0:
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidRetry)
	case r.MaxDelay > 0 && r.InitialDelay > r.MaxDelay:
		return fmt.Errorf("%w: initial_delay exceeds max_delay", ErrInvalidRetry)
	case r.Multiplier < 0:
		return fmt.Errorf("%w: multiplier must not be negative", ErrInvalidRetry)
	}
	for _, s := range r.RetryStatuses {
		if s < 400 || s > 599 {
			return fmt.Errorf("%w: retry status %d is not an error status", ErrInvalidRetry, s)
		}
	}

	if p.Throttle.Rate < 0 || p.Throttle.Burst < 0 {
		return ErrInvalidThrottle
	}
	if !validLogLevels[p.Logging.Level] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, p.Logging.Level)
	}
	if p.Observe.Enabled() {
		cfg := p.ObserveConfig()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: observe: %w", err)
		}
	}
	return nil
}

// Operation returns the telemetry metadata for an operation of this profile.
func (p *Profile) Operation(name string) observe.Operation {
	return observe.Operation{Provider: p.Provider, Service: p.Service, Name: name}
}

// Enabled reports whether any exporter is configured.
func (c ObserveConfig) Enabled() bool {
	return (c.TracingExporter != "" && c.TracingExporter != "none") ||
		(c.MetricsExporter != "" && c.MetricsExporter != "none")
}

// ObserveConfig converts the profile's observe section for
// observe.NewObserver.
func (p *Profile) ObserveConfig() observe.Config {
	name := p.Observe.ServiceName
	if name == "" {
		name = p.Name
	}
	o := p.Observe
	return observe.Config{
		ServiceName: name,
		Tracing: observe.TracingConfig{
			Enabled:   o.TracingExporter != "" && o.TracingExporter != "none",
			Exporter:  o.TracingExporter,
			SamplePct: o.SamplePct,
			Endpoint:  o.Endpoint,
			Insecure:  o.Insecure,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.MetricsExporter != "" && o.MetricsExporter != "none",
			Exporter: o.MetricsExporter,
			Endpoint: o.Endpoint,
			Insecure: o.Insecure,
		},
		Logging: observe.LoggingConfig{
			Enabled: p.Logging.Level != "",
			Level:   p.Logging.Level,
		},
	}
}

func registered(kind string) bool {
	for _, name := range auth.DefaultRegistry.ListSigners() {
		if name == kind {
			return true
		}
	}
	return false
}

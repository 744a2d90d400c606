package config

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/jonwraymond/cloudcore/auth"
	"github.com/jonwraymond/cloudcore/classify"
	"github.com/jonwraymond/cloudcore/dispatch"
	"github.com/jonwraymond/cloudcore/dispatch/httptransport"
	"github.com/jonwraymond/cloudcore/observe"
	"github.com/jonwraymond/cloudcore/resilience"
	"github.com/jonwraymond/cloudcore/secret"
)

// Deps supplies runtime collaborators a profile cannot express.
type Deps struct {
	// Transport sends requests.
	// Default: httptransport.New with the profile's transport settings.
	Transport dispatch.Transport

	// Resolver resolves credential references.
	// Default: strict resolver with the env provider.
	Resolver *secret.Resolver

	// Observer, when set, supplies tracing, metrics and logging and
	// overrides the profile's logging level.
	Observer observe.Observer

	// Throttle is shared across dispatchers. Default: built from the profile
	// when throttle.rate is positive.
	Throttle *resilience.Throttle

	// LogWriter receives JSON log lines. Default: os.Stderr
	LogWriter io.Writer
}

// NewDispatcher builds a dispatcher for the profile. Credentials are
// resolved once here so missing secrets fail at startup rather than on the
// first call. Extra options are applied last.
func (p *Profile) NewDispatcher(ctx context.Context, deps Deps, opts ...dispatch.Option) (*dispatch.Dispatcher, error) {
	signer, err := p.NewSigner()
	if err != nil {
		return nil, err
	}

	supplier := p.NewSupplier(deps.Resolver)
	if !p.anonymous() {
		if _, err := supplier.Credentials(ctx); err != nil {
			return nil, fmt.Errorf("config: profile %s: credentials: %w", p.Name, err)
		}
	}

	transport := deps.Transport
	if transport == nil {
		transport = httptransport.New(httptransport.Config{
			ResponseHeaderTimeout: p.Transport.ResponseHeaderTimeout,
		})
	}

	table, _ := classify.TableByName(p.ErrorTable)
	options := []dispatch.Option{
		dispatch.WithPolicy(resilience.NewPolicy(p.PolicyConfig())),
		dispatch.WithClassifier(classify.NewClassifier(classify.ClassifierConfig{Table: &table})),
		dispatch.WithAttemptTimeout(p.Transport.AttemptTimeout),
	}
	if p.Transport.UserAgent != "" {
		options = append(options, dispatch.WithUserAgent(p.Transport.UserAgent))
	}

	throttle := deps.Throttle
	if throttle == nil && p.Throttle.Rate > 0 {
		throttle = resilience.NewThrottle(resilience.ThrottleConfig{Rate: p.Throttle.Rate, Burst: p.Throttle.Burst})
	}
	if throttle != nil {
		options = append(options, dispatch.WithThrottle(throttle))
	}

	switch {
	case deps.Observer != nil:
		mw, err := observe.MiddlewareFromObserver(deps.Observer)
		if err != nil {
			return nil, fmt.Errorf("config: profile %s: %w", p.Name, err)
		}
		options = append(options, dispatch.WithMiddleware(mw), dispatch.WithLogger(deps.Observer.Logger()))
	case p.Logging.Level != "":
		w := deps.LogWriter
		if w == nil {
			w = os.Stderr
		}
		options = append(options, dispatch.WithLogger(observe.NewLoggerWithWriter(p.Logging.Level, w)))
	}

	d, err := dispatch.New(transport, signer, supplier, append(options, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("config: profile %s: %w", p.Name, err)
	}
	return d, nil
}

// NewSigner creates the profile's signer. Region and service fill in the
// v4 options when they are not set explicitly.
func (p *Profile) NewSigner() (auth.Signer, error) {
	cfg := make(map[string]any, len(p.Signer.Options)+2)
	maps.Copy(cfg, p.Signer.Options)
	if p.Signer.Kind == "v4" {
		if _, ok := cfg["region"]; !ok && p.Region != "" {
			cfg["region"] = p.Region
		}
		if _, ok := cfg["service"]; !ok && p.Service != "" {
			cfg["service"] = p.Service
		}
	}
	signer, err := auth.DefaultRegistry.CreateSigner(p.Signer.Kind, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: profile %s: %w", p.Name, err)
	}
	return signer, nil
}

// NewSupplier returns a supplier resolving the profile's credential
// references. With credentials.cache set, resolved values are memoized
// until the dispatcher invalidates them after an authorization failure.
// Anonymous profiles get an empty static supplier.
func (p *Profile) NewSupplier(resolver *secret.Resolver) auth.Supplier {
	if p.anonymous() {
		return auth.NewStaticSupplier(auth.Credentials{})
	}
	if resolver == nil {
		resolver = secret.NewResolver(true, secret.NewEnvProvider())
	}
	resolved := auth.NewResolvedSupplier(resolver, p.Credentials.CredentialRefs)
	if !p.Credentials.Cache {
		return resolved
	}
	return auth.NewRefreshingSupplier(resolved.Credentials, auth.RefreshConfig{MaxAttempts: 1})
}

func (p *Profile) anonymous() bool {
	return p.Signer.Kind == "" || p.Signer.Kind == "anonymous"
}

// PolicyConfig converts the retry section.
func (p *Profile) PolicyConfig() resilience.PolicyConfig {
	r := p.Retry
	cfg := resilience.PolicyConfig{
		MaxAttempts: r.MaxAttempts,
		Backoff: resilience.BackoffConfig{
			InitialDelay:  r.InitialDelay,
			MaxDelay:      r.MaxDelay,
			Multiplier:    r.Multiplier,
			DisableJitter: r.DisableJitter,
		},
		MinRateLimitDelay: r.MinRateLimitDelay,
		MaxRateLimitWait:  r.MaxRateLimitWait,
		RetryStatuses:     r.RetryStatuses,
	}
	switch r.Strategy {
	case "linear":
		cfg.Backoff.Strategy = resilience.BackoffLinear
	case "constant":
		cfg.Backoff.Strategy = resilience.BackoffConstant
	default:
		cfg.Backoff.Strategy = resilience.BackoffExponential
	}
	if len(r.IdempotentActions) > 0 {
		cfg.IdempotentActionPrefixes = append(append([]string(nil), resilience.DefaultIdempotentActionPrefixes...), r.IdempotentActions...)
	}
	return cfg
}

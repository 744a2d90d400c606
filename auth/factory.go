package auth

import (
	"crypto/sha1" // #nosec G505 -- required by the legacy signature scheme.
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// SignerFactory creates a signer from configuration options.
type SignerFactory func(cfg map[string]any) (Signer, error)

// ErrUnknownSigner is returned when no factory is registered under a name.
var ErrUnknownSigner = errors.New("auth: unknown signer")

// Registry manages signer factories by name.
type Registry struct {
	mu      sync.RWMutex
	signers map[string]SignerFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{signers: make(map[string]SignerFactory)}
}

// RegisterSigner adds a signer factory.
func (r *Registry) RegisterSigner(name string, factory SignerFactory) error {
	if name == "" || factory == nil {
		return errors.New("auth: invalid signer registration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.signers[name]; exists {
		return fmt.Errorf("auth: signer %q already registered", name)
	}
	r.signers[name] = factory
	return nil
}

// CreateSigner instantiates a signer by name.
func (r *Registry) CreateSigner(name string, cfg map[string]any) (Signer, error) {
	r.mu.RLock()
	factory, ok := r.signers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSigner, name)
	}
	signer, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("auth: create %s signer: %w", name, err)
	}
	return signer, nil
}

// ListSigners returns registered signer names, sorted.
func (r *Registry) ListSigners() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.signers))
	for name := range r.signers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in signers: anonymous, legacy, v4, jwt.
var DefaultRegistry = NewRegistry()

func init() {
	_ = DefaultRegistry.RegisterSigner("anonymous", func(map[string]any) (Signer, error) {
		return AnonymousSigner, nil
	})

	_ = DefaultRegistry.RegisterSigner("legacy", func(cfg map[string]any) (Signer, error) {
		var config LegacyConfig
		var err error
		config.Scheme = optString(cfg, "scheme")
		config.HeaderPrefix = optString(cfg, "header_prefix")
		config.SessionTokenHeader = optString(cfg, "session_token_header")
		config.IdentityParam = optString(cfg, "identity_param")
		config.ExpiresParam = optString(cfg, "expires_param")
		config.SignatureParam = optString(cfg, "signature_param")
		if config.SubResources, err = optStrings(cfg, "sub_resources"); err != nil {
			return nil, err
		}
		if config.Mode, err = optMode(cfg); err != nil {
			return nil, err
		}
		if config.Expires, err = optDuration(cfg, "expires"); err != nil {
			return nil, err
		}
		switch h := optString(cfg, "hash"); h {
		case "", "sha1":
			config.Hash = sha1.New
		case "sha256":
			config.Hash = sha256.New
		default:
			return nil, fmt.Errorf("unsupported hash %q", h)
		}
		return NewLegacySigner(config), nil
	})

	_ = DefaultRegistry.RegisterSigner("v4", func(cfg map[string]any) (Signer, error) {
		var config V4Config
		var err error
		config.Region = optString(cfg, "region")
		config.Service = optString(cfg, "service")
		config.ContentHashHeader = optString(cfg, "content_hash_header")
		config.Algorithm = optString(cfg, "algorithm")
		config.KeyPrefix = optString(cfg, "key_prefix")
		config.Terminator = optString(cfg, "terminator")
		config.ParamPrefix = optString(cfg, "param_prefix")
		config.UnsignedPayload = optBool(cfg, "unsigned_payload")
		if config.Region == "" || config.Service == "" {
			return nil, errors.New("region and service are required")
		}
		if config.Mode, err = optMode(cfg); err != nil {
			return nil, err
		}
		if config.Expires, err = optDuration(cfg, "expires"); err != nil {
			return nil, err
		}
		return NewV4Signer(config), nil
	})

	_ = DefaultRegistry.RegisterSigner("jwt", func(cfg map[string]any) (Signer, error) {
		var config JWTConfig
		var err error
		config.Method = optString(cfg, "method")
		config.Audience = optString(cfg, "audience")
		config.KeyID = optString(cfg, "key_id")
		config.GrantType = optString(cfg, "grant_type")
		if config.TTL, err = optDuration(cfg, "ttl"); err != nil {
			return nil, err
		}
		if claims, ok := cfg["claims"].(map[string]any); ok {
			config.Claims = claims
		}
		switch p := optString(cfg, "placement"); p {
		case "", "bearer":
			config.Placement = PlaceBearerHeader
		case "assertion":
			config.Placement = PlaceAssertionForm
		default:
			return nil, fmt.Errorf("unsupported placement %q", p)
		}
		return NewJWTSigner(config)
	})
}

func optString(cfg map[string]any, key string) string {
	s, _ := cfg[key].(string)
	return s
}

func optBool(cfg map[string]any, key string) bool {
	b, _ := cfg[key].(bool)
	return b
}

func optStrings(cfg map[string]any, key string) ([]string, error) {
	raw, ok := cfg[key]
	if !ok {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: expected strings, got %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: expected a list, got %T", key, raw)
	}
}

// optDuration accepts Go duration strings ("15m") or whole seconds.
func optDuration(cfg map[string]any, key string) (time.Duration, error) {
	switch v := cfg[key].(type) {
	case nil:
		return 0, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case time.Duration:
		return v, nil
	default:
		return 0, fmt.Errorf("%s: expected duration, got %T", key, v)
	}
}

func optMode(cfg map[string]any) (SigningMode, error) {
	switch m := strings.ToLower(optString(cfg, "mode")); m {
	case "", "header":
		return ModeHeader, nil
	case "query", "presign", "presigned":
		return ModeQuery, nil
	default:
		return ModeHeader, fmt.Errorf("unsupported signing mode %q", m)
	}
}

package secret

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

// EnvProvider resolves references against the process environment.
type EnvProvider struct{}

// NewEnvProvider creates the "env" provider.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// Name returns "env".
func (p *EnvProvider) Name() string {
	return "env"
}

// Resolve returns the value of the environment variable ref.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("%w: environment variable %q is not set", ErrNotFound, ref)
	}
	return v, nil
}

// MapProvider resolves references from an in-memory map. Useful for tests
// and for credentials injected by a host process.
type MapProvider struct {
	name string

	mu     sync.RWMutex
	values map[string]string
}

// NewMapProvider creates a named map-backed provider.
func NewMapProvider(name string, values map[string]string) *MapProvider {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapProvider{name: name, values: copied}
}

// Name returns the provider name.
func (p *MapProvider) Name() string {
	return p.name
}

// Resolve returns the stored value for ref.
func (p *MapProvider) Resolve(_ context.Context, ref string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[ref]
	if !ok {
		return "", fmt.Errorf("%w: %q in provider %q", ErrNotFound, ref, p.name)
	}
	return v, nil
}

// Set stores or replaces a value.
func (p *MapProvider) Set(ref, value string) {
	p.mu.Lock()
	p.values[ref] = value
	p.mu.Unlock()
}

var (
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*MapProvider)(nil)
)

package auth

import (
	"context"
	"fmt"

	"github.com/jonwraymond/cloudcore/secret"
)

// CredentialRefs holds references to credential material. Each value may be
// a literal, an environment expansion ("${AWS_SECRET_ACCESS_KEY}"), or a
// secret reference ("secretref:env:AWS_SECRET_ACCESS_KEY").
type CredentialRefs struct {
	Identity     string `yaml:"identity"`
	Secret       string `yaml:"secret"`
	SessionToken string `yaml:"session_token"`
}

// ResolvedSupplier resolves credential references on every call. Wrap it in
// a RefreshingSupplier to memoize the result.
type ResolvedSupplier struct {
	resolver *secret.Resolver
	refs     CredentialRefs
}

// NewResolvedSupplier creates a supplier resolving refs through resolver.
func NewResolvedSupplier(resolver *secret.Resolver, refs CredentialRefs) *ResolvedSupplier {
	return &ResolvedSupplier{resolver: resolver, refs: refs}
}

// Credentials resolves the configured references.
func (s *ResolvedSupplier) Credentials(ctx context.Context) (Credentials, error) {
	identity, err := s.resolver.ResolveValue(ctx, s.refs.Identity)
	if err != nil {
		return Credentials{}, fmt.Errorf("resolve identity: %w", err)
	}
	key, err := s.resolver.ResolveValue(ctx, s.refs.Secret)
	if err != nil {
		return Credentials{}, fmt.Errorf("resolve secret: %w", err)
	}
	var token string
	if s.refs.SessionToken != "" {
		token, err = s.resolver.ResolveValue(ctx, s.refs.SessionToken)
		if err != nil {
			return Credentials{}, fmt.Errorf("resolve session token: %w", err)
		}
	}

	creds := Credentials{Identity: identity, Secret: key, SessionToken: token}
	if creds.Empty() {
		return Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}

var _ Supplier = (*ResolvedSupplier)(nil)

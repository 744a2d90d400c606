package auth

import (
	"context"
	"fmt"
	"time"
)

// Credentials is an identity/secret pair with an optional session token and
// expiry. The zero Expires means the credentials never expire.
type Credentials struct {
	Identity     string
	Secret       string
	SessionToken string
	Expires      time.Time
}

// Empty reports whether identity or secret is missing.
func (c Credentials) Empty() bool {
	return c.Identity == "" || c.Secret == ""
}

// Expired reports whether c has expired at now.
func (c Credentials) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// String never includes the secret or session token.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Identity: %q}", c.Identity)
}

// check returns the error a signer must fail fast with.
func (c Credentials) check(now time.Time) error {
	if c.Empty() {
		return ErrMissingCredentials
	}
	if c.Expired(now) {
		return fmt.Errorf("%w at %s", ErrCredentialsExpired, c.Expires.UTC().Format(time.RFC3339))
	}
	return nil
}

// Supplier provides credentials for one logical operation.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines.
// - Ownership: returned Credentials are values; callers never mutate the source.
type Supplier interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// SupplierFunc adapts a function to Supplier.
type SupplierFunc func(ctx context.Context) (Credentials, error)

// Credentials calls f.
func (f SupplierFunc) Credentials(ctx context.Context) (Credentials, error) {
	return f(ctx)
}

// StaticSupplier always returns the same credentials.
type StaticSupplier struct {
	creds Credentials
}

// NewStaticSupplier creates a supplier for fixed credentials.
func NewStaticSupplier(creds Credentials) *StaticSupplier {
	return &StaticSupplier{creds: creds}
}

// Credentials returns the fixed credentials.
func (s *StaticSupplier) Credentials(_ context.Context) (Credentials, error) {
	return s.creds, nil
}

var (
	_ Supplier = (*StaticSupplier)(nil)
	_ Supplier = SupplierFunc(nil)
)

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"
)

// RefreshConfig configures a RefreshingSupplier.
type RefreshConfig struct {
	// Window refreshes credentials this long before they expire.
	// Default: 1 minute
	Window time.Duration

	// MaxAttempts bounds calls to the refresh function per refresh.
	// Default: 3
	MaxAttempts int

	// InitialInterval is the first delay between failed refresh calls.
	// Default: 200ms
	InitialInterval time.Duration

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time
}

// RefreshingSupplier memoizes credentials from a refresh function and
// refreshes them when they approach expiry.
type RefreshingSupplier struct {
	config  RefreshConfig
	refresh SupplierFunc

	mu      sync.RWMutex
	creds   Credentials
	have    bool
	sfGroup singleflight.Group // one refresh at a time
}

// NewRefreshingSupplier creates a supplier backed by refresh.
func NewRefreshingSupplier(refresh SupplierFunc, config RefreshConfig) *RefreshingSupplier {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = 200 * time.Millisecond
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &RefreshingSupplier{
		config:  config,
		refresh: refresh,
	}
}

// Credentials returns memoized credentials, refreshing them when absent or
// inside the refresh window.
func (s *RefreshingSupplier) Credentials(ctx context.Context) (Credentials, error) {
	if creds, ok := s.cached(); ok {
		return creds, nil
	}

	// The shared refresh outlives any single caller; each caller stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := s.sfGroup.DoChan("refresh", func() (any, error) {
		// Another caller may have refreshed while we waited for the group.
		if creds, ok := s.cached(); ok {
			return creds, nil
		}
		creds, err := s.fetch(shared)
		if err != nil {
			return Credentials{}, err
		}
		s.mu.Lock()
		s.creds = creds
		s.have = true
		s.mu.Unlock()
		return creds, nil
	})

	var (
		v   any
		err error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if err != nil {
		// Still-valid credentials inside the refresh window are better than none.
		s.mu.RLock()
		creds, have := s.creds, s.have
		s.mu.RUnlock()
		if have && !creds.Expired(s.config.Now()) {
			return creds, nil
		}
		return Credentials{}, err
	}

	return v.(Credentials), nil
}

// Invalidate drops memoized credentials so the next call refreshes.
func (s *RefreshingSupplier) Invalidate() {
	s.mu.Lock()
	s.creds = Credentials{}
	s.have = false
	s.mu.Unlock()
}

func (s *RefreshingSupplier) cached() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.have {
		return Credentials{}, false
	}
	if !s.creds.Expires.IsZero() && !s.config.Now().Add(s.config.Window).Before(s.creds.Expires) {
		return Credentials{}, false
	}
	return s.creds, true
}

func (s *RefreshingSupplier) fetch(ctx context.Context) (Credentials, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.InitialInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.config.MaxAttempts-1)), ctx)

	var creds Credentials
	err := backoff.Retry(func() error {
		c, err := s.refresh(ctx)
		if err != nil {
			return err
		}
		if c.Empty() {
			return backoff.Permanent(ErrMissingCredentials)
		}
		creds = c
		return nil
	}, policy)
	if err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

var _ Supplier = (*RefreshingSupplier)(nil)

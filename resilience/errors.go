package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrThrottled is returned when a throttle pause outlasts the caller's deadline.
	ErrThrottled = errors.New("resilience: throttled")
)

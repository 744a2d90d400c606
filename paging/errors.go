package paging

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConsumed is yielded when a single-use sequence is ranged again.
	ErrConsumed = errors.New("paging: sequence already consumed")

	// ErrRepeatedMarker is returned when a page's next marker equals the
	// marker that fetched it, which would loop forever.
	ErrRepeatedMarker = errors.New("paging: next marker repeats current marker")

	// ErrInvalidMarker is returned when a marker cannot be decoded by an adapter.
	ErrInvalidMarker = errors.New("paging: invalid marker")
)

// ConfigError reports provider metadata that cannot support a fan-out,
// such as a region with no zone mapping.
type ConfigError struct {
	ParentKind string
	ChildKind  string
	Missing    []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("paging: no %s mapping for %s %s",
		e.ChildKind, e.ParentKind, strings.Join(e.Missing, ", "))
}

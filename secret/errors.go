package secret

import "errors"

var (
	// ErrProviderNotRegistered is returned for a reference to an unknown provider.
	ErrProviderNotRegistered = errors.New("secret: provider is not registered")

	// ErrNotFound is returned when a provider has no value for a reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrEmptyValue is returned in strict mode when a provider yields "".
	ErrEmptyValue = errors.New("secret: empty value")

	// ErrMissingEnv is returned when an expansion names unset variables.
	ErrMissingEnv = errors.New("secret: missing required environment variables")
)

package config

import "errors"

var (
	// ErrMissingProvider is returned when a profile names no provider.
	ErrMissingProvider = errors.New("config: provider is required")

	// ErrMissingEndpoint is returned when a profile has no endpoint.
	ErrMissingEndpoint = errors.New("config: endpoint is required")

	// ErrInvalidEndpoint is returned when the endpoint is not an http(s) URL.
	ErrInvalidEndpoint = errors.New("config: invalid endpoint")

	// ErrUnknownSigner is returned when signer.kind is not registered.
	ErrUnknownSigner = errors.New("config: unknown signer kind")

	// ErrUnknownErrorTable is returned when error_table names no built-in table.
	ErrUnknownErrorTable = errors.New("config: unknown error table")

	// ErrInvalidRetry is returned for negative or inconsistent retry settings.
	ErrInvalidRetry = errors.New("config: invalid retry settings")

	// ErrInvalidThrottle is returned for negative throttle settings.
	ErrInvalidThrottle = errors.New("config: invalid throttle settings")

	// ErrInvalidLogLevel is returned for an unknown logging level.
	ErrInvalidLogLevel = errors.New("config: invalid log level")
)

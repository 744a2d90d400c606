package auth

import "errors"

// Sentinel errors for credentials and signing.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrCredentialsExpired = errors.New("auth: credentials expired")
	ErrBodyNotSeekable    = errors.New("auth: body must be seekable to compute its hash")
	ErrInvalidSigningKey  = errors.New("auth: invalid signing key")
	ErrUnsupportedMethod  = errors.New("auth: unsupported signing method")
)

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"
	"time"

	"github.com/jonwraymond/cloudcore/request"
)

// Signer adds authentication to a request.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Determinism: for equal inputs Sign must return byte-identical requests.
// - Errors: missing or expired credentials and unhashable bodies fail fast;
//   signing errors are never retried.
// - Ownership: req is never mutated; a new request is returned.
type Signer interface {
	Sign(req *request.Request, creds Credentials, now time.Time) (*request.Request, error)
}

// SignerFunc adapts a function to Signer.
type SignerFunc func(req *request.Request, creds Credentials, now time.Time) (*request.Request, error)

// Sign calls f.
func (f SignerFunc) Sign(req *request.Request, creds Credentials, now time.Time) (*request.Request, error) {
	return f(req, creds, now)
}

// SigningMode selects where a symmetric signature is placed. The two modes
// are mutually exclusive: a request signed in ModeQuery never carries an
// Authorization header.
type SigningMode int

const (
	// ModeHeader places the signature in the Authorization header.
	ModeHeader SigningMode = iota
	// ModeQuery produces a temporary, pre-signed URL carrying the signature
	// and an expiry as query parameters.
	ModeQuery
)

// String returns the string representation of the mode.
func (m SigningMode) String() string {
	switch m {
	case ModeHeader:
		return "header"
	case ModeQuery:
		return "query"
	default:
		return "unknown"
	}
}

// AnonymousSigner leaves requests unsigned.
var AnonymousSigner Signer = SignerFunc(func(req *request.Request, _ Credentials, _ time.Time) (*request.Request, error) {
	return req, nil
})

func hmacSum(newHash func() hash.Hash, key []byte, data string) []byte {
	mac := hmac.New(newHash, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

func sha256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// trimHeaderValue trims and collapses runs of spaces.
func trimHeaderValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

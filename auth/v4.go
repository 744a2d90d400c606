package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/cloudcore/request"
)

const (
	v4DateFormat  = "20060102"
	v4StampFormat = "20060102T150405Z"

	// UnsignedPayload replaces the body hash when the payload is not signed.
	UnsignedPayload = "UNSIGNED-PAYLOAD"
)

// headers never included in a v4 signature.
var v4IgnoredHeaders = map[string]bool{
	"authorization":   true,
	"user-agent":      true,
	"expect":          true,
	"x-amzn-trace-id": true,
}

// V4Config configures a V4Signer.
type V4Config struct {
	// Region and Service scope the signature. Both are required.
	Region  string
	Service string

	// Mode selects header or temporary URL signing.
	// Default: ModeHeader
	Mode SigningMode

	// Expires is the lifetime of a temporary URL.
	// Default: 15 minutes
	Expires time.Duration

	// UnsignedPayload skips hashing the body. Required for non-seekable
	// stream bodies.
	UnsignedPayload bool

	// ContentHashHeader, when set, carries the payload hash as a header
	// (S3 requires "X-Amz-Content-Sha256").
	ContentHashHeader string

	// Algorithm names the signing algorithm.
	// Default: "AWS4-HMAC-SHA256"
	Algorithm string

	// KeyPrefix is prepended to the secret to seed the scope chain.
	// Default: "AWS4"
	KeyPrefix string

	// Terminator closes the credential scope.
	// Default: "aws4_request"
	Terminator string

	// ParamPrefix names the date header and the temporary URL parameters
	// (<prefix>Date, <prefix>Signature, ...).
	// Default: "X-Amz-"
	ParamPrefix string
}

// V4Signer produces region and service scoped signatures.
type V4Signer struct {
	config V4Config
}

// NewV4Signer creates a scoped symmetric signer.
func NewV4Signer(config V4Config) *V4Signer {
	if config.Expires <= 0 {
		config.Expires = 15 * time.Minute
	}
	if config.Algorithm == "" {
		config.Algorithm = "AWS4-HMAC-SHA256"
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "AWS4"
	}
	if config.Terminator == "" {
		config.Terminator = "aws4_request"
	}
	if config.ParamPrefix == "" {
		config.ParamPrefix = "X-Amz-"
	}
	return &V4Signer{config: config}
}

// SigningKey derives the signing key through the credential scope chain
// date -> region -> service -> terminator. The order is fixed.
func SigningKey(keyPrefix, secret, date, region, service, terminator string) []byte {
	kDate := hmacSum(sha256.New, []byte(keyPrefix+secret), date)
	kRegion := hmacSum(sha256.New, kDate, region)
	kService := hmacSum(sha256.New, kRegion, service)
	return hmacSum(sha256.New, kService, terminator)
}

// Sign signs req in the configured mode.
//
// In header mode a request whose query already carries a signature
// parameter (a temporary URL signed earlier) is returned unchanged: adding
// an Authorization header as well makes servers reject the request for
// using two authentication methods.
func (s *V4Signer) Sign(req *request.Request, creds Credentials, now time.Time) (*request.Request, error) {
	if err := creds.check(now); err != nil {
		return nil, err
	}
	if s.config.Region == "" || s.config.Service == "" {
		return nil, fmt.Errorf("%w: region and service are required", ErrInvalidSigningKey)
	}

	if s.config.Mode == ModeQuery {
		return s.signQuery(req, creds, now.UTC())
	}
	if req.Query().Has(s.param("Signature")) {
		return req, nil
	}
	return s.signHeader(req, creds, now.UTC())
}

func (s *V4Signer) signHeader(req *request.Request, creds Credentials, now time.Time) (*request.Request, error) {
	payloadHash, err := s.payloadHash(req)
	if err != nil {
		return nil, err
	}

	req = req.WithoutHeader("Authorization").WithHeader(s.param("Date"), now.Format(v4StampFormat))
	if creds.SessionToken != "" {
		req = req.WithHeader(s.param("Security-Token"), creds.SessionToken)
	}
	if s.config.ContentHashHeader != "" {
		req = req.WithHeader(s.config.ContentHashHeader, payloadHash)
	}

	signedHeaders, canonicalHeaders := s.canonicalHeaders(req)
	scope := s.scope(now)
	canonical := s.CanonicalRequest(req, canonicalHeaders, signedHeaders, payloadHash)
	signature := s.signature(creds, now, scope, canonical)

	auth := fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		s.config.Algorithm, creds.Identity, scope, signedHeaders, signature)
	return req.WithHeader("Authorization", auth), nil
}

func (s *V4Signer) signQuery(req *request.Request, creds Credentials, now time.Time) (*request.Request, error) {
	scope := s.scope(now)

	req = req.WithoutHeader("Authorization").
		WithoutQueryParam(s.param("Signature")).
		SetQueryParam(s.param("Algorithm"), s.config.Algorithm).
		SetQueryParam(s.param("Credential"), creds.Identity+"/"+scope).
		SetQueryParam(s.param("Date"), now.Format(v4StampFormat)).
		SetQueryParam(s.param("Expires"), strconv.FormatInt(int64(s.config.Expires/time.Second), 10))
	if creds.SessionToken != "" {
		req = req.SetQueryParam(s.param("Security-Token"), creds.SessionToken)
	}

	signedHeaders, canonicalHeaders := s.canonicalHeaders(req)
	req = req.SetQueryParam(s.param("SignedHeaders"), signedHeaders)

	canonical := s.CanonicalRequest(req, canonicalHeaders, signedHeaders, UnsignedPayload)
	return req.SetQueryParam(s.param("Signature"), s.signature(creds, now, scope, canonical)), nil
}

func (s *V4Signer) signature(creds Credentials, now time.Time, scope, canonical string) string {
	sts := strings.Join([]string{
		s.config.Algorithm,
		now.Format(v4StampFormat),
		scope,
		sha256Hex(canonical),
	}, "\n")

	key := SigningKey(s.config.KeyPrefix, creds.Secret, now.Format(v4DateFormat),
		s.config.Region, s.config.Service, s.config.Terminator)
	return hex.EncodeToString(hmacSum(sha256.New, key, sts))
}

// CanonicalRequest returns the canonical request string hashed into the
// string to sign.
func (s *V4Signer) CanonicalRequest(req *request.Request, canonicalHeaders, signedHeaders, payloadHash string) string {
	return strings.Join([]string{
		string(req.Method()),
		request.EncodePath(req.Path()),
		canonicalQuery(req.Query()),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")
}

func (s *V4Signer) scope(now time.Time) string {
	return strings.Join([]string{
		now.Format(v4DateFormat),
		s.config.Region,
		s.config.Service,
		s.config.Terminator,
	}, "/")
}

func (s *V4Signer) param(name string) string {
	return s.config.ParamPrefix + name
}

func (s *V4Signer) payloadHash(req *request.Request) (string, error) {
	if s.config.UnsignedPayload {
		return UnsignedPayload, nil
	}
	body := req.Body()
	if body == nil {
		return sha256Hex(""), nil
	}
	h := sha256.New()
	if err := body.Hash(h); err != nil {
		if errors.Is(err, request.ErrBodyNotSeekable) {
			return "", ErrBodyNotSeekable
		}
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// canonicalHeaders returns the signed header list and the canonical header
// block, both sorted by lower-cased name. The host is always signed.
func (s *V4Signer) canonicalHeaders(req *request.Request) (string, string) {
	h := req.Header()
	values := map[string][]string{"host": {req.Host()}}
	for _, name := range h.Names() {
		lower := strings.ToLower(name)
		if v4IgnoredHeaders[lower] || lower == "host" {
			continue
		}
		for _, v := range h.Values(name) {
			values[lower] = append(values[lower], trimHeaderValue(v))
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.Join(values[name], ","))
		b.WriteByte('\n')
	}
	return strings.Join(names, ";"), b.String()
}

// canonicalQuery sorts the encoded parameters and always renders
// "key=value", even for empty values.
func canonicalQuery(q request.Query) string {
	params := q.Params()
	encoded := make([]request.Param, len(params))
	for i, p := range params {
		encoded[i] = request.Param{
			Key:   request.EncodeQueryComponent(p.Key),
			Value: request.EncodeQueryComponent(p.Value),
		}
	}
	sort.Slice(encoded, func(i, j int) bool {
		if encoded[i].Key != encoded[j].Key {
			return encoded[i].Key < encoded[j].Key
		}
		return encoded[i].Value < encoded[j].Value
	})

	parts := make([]string, len(encoded))
	for i, p := range encoded {
		parts[i] = p.Key + "=" + p.Value
	}
	return strings.Join(parts, "&")
}

// Config returns the signer configuration.
func (s *V4Signer) Config() V4Config {
	return s.config
}

var _ Signer = (*V4Signer)(nil)

package auth

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"hash"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/cloudcore/request"
)

// DefaultSubResources are the query parameters included in the canonical
// resource of a legacy signature.
var DefaultSubResources = []string{
	"acl", "cors", "delete", "lifecycle", "location", "logging", "notification",
	"partNumber", "policy", "requestPayment", "response-cache-control",
	"response-content-disposition", "response-content-encoding",
	"response-content-language", "response-content-type", "response-expires",
	"tagging", "torrent", "uploadId", "uploads", "versionId", "versioning",
	"versions", "website",
}

// LegacyConfig configures a LegacySigner.
type LegacyConfig struct {
	// Scheme prefixes the Authorization header value.
	// Default: "AWS"
	Scheme string

	// Mode selects header or temporary URL signing.
	// Default: ModeHeader
	Mode SigningMode

	// Hash is the HMAC hash function.
	// Default: sha1.New
	Hash func() hash.Hash

	// HeaderPrefix selects the provider headers included in the canonical
	// string. Matching is case-insensitive.
	// Default: "x-amz-"
	HeaderPrefix string

	// SessionTokenHeader carries session tokens.
	// Default: HeaderPrefix + "security-token"
	SessionTokenHeader string

	// SubResources lists query parameters that are part of the resource.
	// Default: DefaultSubResources
	SubResources []string

	// Expires is the lifetime of a temporary URL.
	// Default: 15 minutes
	Expires time.Duration

	// IdentityParam, ExpiresParam, and SignatureParam name the temporary
	// URL query parameters.
	// Defaults: "AWSAccessKeyId", "Expires", "Signature"
	IdentityParam  string
	ExpiresParam   string
	SignatureParam string
}

// LegacySigner computes a single HMAC over method, content hash, content
// type, date, provider headers, and the canonical resource.
type LegacySigner struct {
	config       LegacyConfig
	subResources map[string]bool
}

// NewLegacySigner creates a legacy symmetric signer.
func NewLegacySigner(config LegacyConfig) *LegacySigner {
	if config.Scheme == "" {
		config.Scheme = "AWS"
	}
	if config.Hash == nil {
		config.Hash = sha1.New
	}
	if config.HeaderPrefix == "" {
		config.HeaderPrefix = "x-amz-"
	}
	config.HeaderPrefix = strings.ToLower(config.HeaderPrefix)
	if config.SessionTokenHeader == "" {
		config.SessionTokenHeader = config.HeaderPrefix + "security-token"
	}
	if config.SubResources == nil {
		config.SubResources = DefaultSubResources
	}
	if config.Expires <= 0 {
		config.Expires = 15 * time.Minute
	}
	if config.IdentityParam == "" {
		config.IdentityParam = "AWSAccessKeyId"
	}
	if config.ExpiresParam == "" {
		config.ExpiresParam = "Expires"
	}
	if config.SignatureParam == "" {
		config.SignatureParam = "Signature"
	}

	sub := make(map[string]bool, len(config.SubResources))
	for _, name := range config.SubResources {
		sub[name] = true
	}

	return &LegacySigner{config: config, subResources: sub}
}

// Sign signs req in the configured mode.
func (s *LegacySigner) Sign(req *request.Request, creds Credentials, now time.Time) (*request.Request, error) {
	if err := creds.check(now); err != nil {
		return nil, err
	}
	if s.config.Mode == ModeQuery {
		return s.signQuery(req, creds, now), nil
	}
	if req.Query().Has(s.config.SignatureParam) {
		return req, nil
	}
	return s.signHeader(req, creds, now), nil
}

func (s *LegacySigner) signHeader(req *request.Request, creds Credentials, now time.Time) *request.Request {
	req = req.WithHeader("Date", now.UTC().Format(http.TimeFormat))
	if creds.SessionToken != "" {
		req = req.WithHeader(s.config.SessionTokenHeader, creds.SessionToken)
	}

	signature := s.signature(req, creds, req.Header().Get("Date"), nil)
	return req.WithHeader("Authorization", s.config.Scheme+" "+creds.Identity+":"+signature)
}

func (s *LegacySigner) signQuery(req *request.Request, creds Credentials, now time.Time) *request.Request {
	expires := strconv.FormatInt(now.Add(s.config.Expires).Unix(), 10)

	req = req.WithoutHeader("Authorization").
		WithoutHeader("Date").
		SetQueryParam(s.config.IdentityParam, creds.Identity).
		SetQueryParam(s.config.ExpiresParam, expires)

	var extra map[string]string
	if creds.SessionToken != "" {
		req = req.SetQueryParam(s.config.SessionTokenHeader, creds.SessionToken)
		extra = map[string]string{s.config.SessionTokenHeader: creds.SessionToken}
	}

	return req.SetQueryParam(s.config.SignatureParam, s.signature(req, creds, expires, extra))
}

func (s *LegacySigner) signature(req *request.Request, creds Credentials, date string, extra map[string]string) string {
	sts := s.StringToSign(req, date, extra)
	return base64.StdEncoding.EncodeToString(hmacSum(s.config.Hash, []byte(creds.Secret), sts))
}

// StringToSign returns the canonical string for req. date is the Date
// header value, or the expiry in epoch seconds for temporary URLs. extra
// adds provider headers that travel in the query string.
func (s *LegacySigner) StringToSign(req *request.Request, date string, extra map[string]string) string {
	h := req.Header()

	var b strings.Builder
	b.WriteString(string(req.Method()))
	b.WriteByte('\n')
	b.WriteString(h.Get("Content-MD5"))
	b.WriteByte('\n')
	b.WriteString(h.Get("Content-Type"))
	b.WriteByte('\n')
	b.WriteString(date)
	b.WriteByte('\n')
	b.WriteString(s.canonicalHeaders(h, extra))
	b.WriteString(s.canonicalResource(req))
	return b.String()
}

func (s *LegacySigner) canonicalHeaders(h request.Header, extra map[string]string) string {
	values := make(map[string][]string)
	for _, name := range h.Names() {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, s.config.HeaderPrefix) {
			continue
		}
		for _, v := range h.Values(name) {
			values[lower] = append(values[lower], trimHeaderValue(v))
		}
	}
	for name, v := range extra {
		lower := strings.ToLower(name)
		values[lower] = append(values[lower], trimHeaderValue(v))
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s:%s\n", name, strings.Join(values[name], ","))
	}
	return b.String()
}

func (s *LegacySigner) canonicalResource(req *request.Request) string {
	var sub []request.Param
	for _, p := range req.Query().Sorted().Params() {
		if s.subResources[p.Key] {
			sub = append(sub, p)
		}
	}

	resource := request.EncodePath(req.Path())
	if len(sub) == 0 {
		return resource
	}

	parts := make([]string, len(sub))
	for i, p := range sub {
		if p.Value == "" {
			parts[i] = p.Key
			continue
		}
		parts[i] = p.Key + "=" + p.Value
	}
	return resource + "?" + strings.Join(parts, "&")
}

// Config returns the signer configuration.
func (s *LegacySigner) Config() LegacyConfig {
	return s.config
}

var _ Signer = (*LegacySigner)(nil)

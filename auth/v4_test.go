package auth

import (
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/cloudcore/request"
)

var exampleCreds = Credentials{
	Identity: "AKIDEXAMPLE",
	Secret:   "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
}

func TestSigningKey_ScopeChain(t *testing.T) {
	key := SigningKey("AWS4", "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY", "20120215", "us-east-1", "iam", "aws4_request")
	want := "f4780e2d9f65fa895f9c67b32ce1baf0b0d8a43505a000a1a9e090d414db404d"
	if got := hex.EncodeToString(key); got != want {
		t.Errorf("SigningKey() = %s, want %s", got, want)
	}

	swapped := SigningKey("AWS4", "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY", "20120215", "iam", "us-east-1", "aws4_request")
	if hex.EncodeToString(swapped) == want {
		t.Error("SigningKey() must depend on scope order")
	}
}

func TestV4Signer_GetVanilla(t *testing.T) {
	now := time.Date(2015, 8, 30, 12, 36, 0, 0, time.UTC)
	s := NewV4Signer(V4Config{Region: "us-east-1", Service: "service"})
	req := request.MustNew(request.MethodGet, "https://example.amazonaws.com/")

	signed, err := s.Sign(req, exampleCreds, now)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	want := "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20150830/us-east-1/service/aws4_request, " +
		"SignedHeaders=host;x-amz-date, " +
		"Signature=5fa00fa31553b73ebf1942676e86291e8372ff2a2260956d9b8aae1d763fbf31"
	if got := signed.Header().Get("Authorization"); got != want {
		t.Errorf("Authorization = %q, want %q", got, want)
	}
	if got := signed.Header().Get("X-Amz-Date"); got != "20150830T123600Z" {
		t.Errorf("X-Amz-Date = %q", got)
	}
	if req.Header().Has("Authorization") {
		t.Error("Sign() mutated the input request")
	}
}

func TestV4Signer_Deterministic(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewV4Signer(V4Config{Region: "eu-west-1", Service: "s3", ContentHashHeader: "X-Amz-Content-Sha256"})
	req := request.MustNew(request.MethodPut, "https://bucket.s3.amazonaws.com/key").
		WithQueryParam("tagging", "").
		WithHeader("X-Amz-Meta-Owner", "  a   b ").
		WithBody(request.StringBody("payload", "text/plain"))

	first, err := s.Sign(req, exampleCreds, now)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	second, err := s.Sign(req, exampleCreds, now)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if first.URL() != second.URL() {
		t.Errorf("URL differs: %q vs %q", first.URL(), second.URL())
	}
	for _, name := range first.Header().Names() {
		if first.Header().Get(name) != second.Header().Get(name) {
			t.Errorf("header %s differs", name)
		}
	}
	if !strings.Contains(first.Header().Get("Authorization"), "x-amz-content-sha256;x-amz-date;x-amz-meta-owner") {
		t.Errorf("Authorization = %q, missing signed headers", first.Header().Get("Authorization"))
	}
}

func TestV4Signer_SkipsAuthorizationWhenPresigned(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewV4Signer(V4Config{Region: "us-east-1", Service: "s3"})
	req := request.MustNew(request.MethodGet, "https://bucket.s3.amazonaws.com/key?X-Amz-Signature=abc&X-Amz-Date=20240501T100000Z")

	signed, err := s.Sign(req, exampleCreds, now)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if signed.Header().Has("Authorization") {
		t.Error("Authorization header added to a presigned request")
	}
	if signed.URL() != req.URL() {
		t.Errorf("URL() = %q, want unchanged %q", signed.URL(), req.URL())
	}
}

func TestV4Signer_QueryMode(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewV4Signer(V4Config{Region: "us-east-1", Service: "s3", Mode: ModeQuery})
	req := request.MustNew(request.MethodGet, "https://bucket.s3.amazonaws.com/key").
		WithHeader("Authorization", "stale")

	signed, err := s.Sign(req, Credentials{Identity: "AKID", Secret: "s", SessionToken: "tok"}, now)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if signed.Header().Has("Authorization") {
		t.Error("temporary URL must not carry an Authorization header")
	}
	q := signed.Query()
	checks := map[string]string{
		"X-Amz-Algorithm":      "AWS4-HMAC-SHA256",
		"X-Amz-Credential":     "AKID/20240501/us-east-1/s3/aws4_request",
		"X-Amz-Date":           "20240501T100000Z",
		"X-Amz-Expires":        "900",
		"X-Amz-SignedHeaders":  "host",
		"X-Amz-Security-Token": "tok",
	}
	for k, want := range checks {
		if got, _ := q.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if sig, _ := q.Get("X-Amz-Signature"); len(sig) != 64 {
		t.Errorf("X-Amz-Signature = %q, want 64 hex chars", sig)
	}

	again, _ := s.Sign(req, Credentials{Identity: "AKID", Secret: "s", SessionToken: "tok"}, now)
	if again.URL() != signed.URL() {
		t.Error("query signing is not deterministic")
	}
}

func TestV4Signer_NonSeekableBody(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	body := request.StreamBody(io.NopCloser(strings.NewReader("stream")), 6, "application/octet-stream")
	req := request.MustNew(request.MethodPut, "https://bucket.s3.amazonaws.com/key").WithBody(body)

	_, err := NewV4Signer(V4Config{Region: "us-east-1", Service: "s3"}).Sign(req, exampleCreds, now)
	if !errors.Is(err, ErrBodyNotSeekable) {
		t.Fatalf("Sign() error = %v, want ErrBodyNotSeekable", err)
	}
	if body.Consumed() {
		t.Error("signing consumed the stream")
	}

	unsigned := NewV4Signer(V4Config{Region: "us-east-1", Service: "s3", UnsignedPayload: true})
	if _, err := unsigned.Sign(req, exampleCreds, now); err != nil {
		t.Errorf("Sign() with unsigned payload error = %v", err)
	}
}

func TestV4Signer_FailsFastOnCredentials(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewV4Signer(V4Config{Region: "us-east-1", Service: "s3"})
	req := request.MustNew(request.MethodGet, "https://bucket.s3.amazonaws.com/key")

	if _, err := s.Sign(req, Credentials{}, now); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Sign() error = %v, want ErrMissingCredentials", err)
	}
	expired := Credentials{Identity: "id", Secret: "s", Expires: now.Add(-time.Second)}
	if _, err := s.Sign(req, expired, now); !errors.Is(err, ErrCredentialsExpired) {
		t.Errorf("Sign() error = %v, want ErrCredentialsExpired", err)
	}
}

func TestCanonicalQuery_SortsEncodedPairs(t *testing.T) {
	req := request.MustNew(request.MethodGet, "https://example.com/").
		WithQueryParam("b", "x y").
		WithQueryParam("a", "1/2,3").
		WithQueryParam("acl", "")

	want := "a=1/2,3&acl=&b=x%20y"
	if got := canonicalQuery(req.Query()); got != want {
		t.Errorf("canonicalQuery() = %q, want %q", got, want)
	}
}

package config

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonwraymond/cloudcore/classify"
	"github.com/jonwraymond/cloudcore/dispatch"
	"github.com/jonwraymond/cloudcore/request"
	"github.com/jonwraymond/cloudcore/secret"
)

// capture records the last request and answers with status.
type capture struct {
	status int
	body   string
	last   *request.Request
}

func (c *capture) Send(_ context.Context, req *request.Request) (*dispatch.Response, error) {
	c.last = req
	return &dispatch.Response{
		StatusCode: c.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(c.body)),
	}, nil
}

func TestNewDispatcher_V4Profile(t *testing.T) {
	t.Setenv("CLOUDCORE_TEST_ACCESS_KEY", "AKIDEXAMPLE")
	t.Setenv("CLOUDCORE_TEST_SECRET_KEY", "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY")

	p, err := Load(filepath.Join("testdata", "aws-ec2.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	tr := &capture{status: 200}
	var logs bytes.Buffer
	d, err := p.NewDispatcher(context.Background(), Deps{Transport: tr, LogWriter: &logs})
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}

	req := request.MustNew(request.MethodPost, p.Endpoint).
		WithBody(request.StringBody("Action=DescribeRegions&Version=2016-11-15", "application/x-www-form-urlencoded"))
	if err := d.Do(context.Background(), p.Operation("DescribeRegions"), req); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	authz := tr.last.Header().Get("Authorization")
	if !strings.Contains(authz, "AKIDEXAMPLE/") || !strings.Contains(authz, "/us-east-1/ec2/") {
		t.Errorf("Authorization = %q, want v4 scope for us-east-1/ec2", authz)
	}
	if got := tr.last.Header().Get("User-Agent"); got != "cloudcore/1.0" {
		t.Errorf("User-Agent = %q, want cloudcore/1.0", got)
	}
	if d.Policy().MaxAttempts() != 4 {
		t.Errorf("MaxAttempts() = %d, want 4", d.Policy().MaxAttempts())
	}
	if logs.Len() != 0 {
		t.Errorf("warn-level logger wrote on success: %s", logs.String())
	}
}

func TestNewDispatcher_MissingCredentials(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "aws-ec2.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	_, err = p.NewDispatcher(context.Background(), Deps{Transport: &capture{status: 200}})
	if err == nil {
		t.Fatal("NewDispatcher() error = nil, want unresolved credential error")
	}
	if !strings.Contains(err.Error(), "CLOUDCORE_TEST_ACCESS_KEY") {
		t.Errorf("error = %v, want it to name the missing variable", err)
	}
}

func TestNewDispatcher_CustomResolver(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "openstack-compute.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	resolver := secret.NewResolver(true, secret.NewMapProvider("vault", map[string]string{
		"compute/key": "0123456789abcdef0123456789abcdef",
	}))
	tr := &capture{status: 404, body: `{"itemNotFound":{"message":"Instance could not be found","code":404}}`}
	d, err := p.NewDispatcher(context.Background(), Deps{Transport: tr, Resolver: resolver})
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}

	err = d.Do(context.Background(), p.Operation("DeleteServer"), request.MustNew(request.MethodDelete, p.Endpoint+"/servers/42"))
	if !classify.IsKind(err, classify.NotFound) {
		t.Errorf("Do(DELETE) error = %v, want NotFound", err)
	}
	authz := tr.last.Header().Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") || strings.Count(authz, ".") != 2 {
		t.Errorf("Authorization = %q, want a bearer JWT", authz)
	}
}

func TestNewDispatcher_Anonymous(t *testing.T) {
	p, err := Parse([]byte("provider: atmos\nendpoint: https://objects.example.com/rest\nlogging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var logs bytes.Buffer
	tr := &capture{status: 200}
	d, err := p.NewDispatcher(context.Background(), Deps{Transport: tr, LogWriter: &logs})
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	if err := d.Do(context.Background(), p.Operation("ListObjects"), request.MustNew(request.MethodGet, p.Endpoint)); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if tr.last.Header().Has("Authorization") {
		t.Error("anonymous profile sent an Authorization header")
	}
	if !strings.Contains(logs.String(), `"operation completed"`) {
		t.Errorf("logs = %q, want completion entry", logs.String())
	}
}

func TestNewSupplier_Anonymous(t *testing.T) {
	for _, kind := range []string{"", "anonymous"} {
		p := &Profile{Name: "anon", Signer: SignerConfig{Kind: kind}}
		creds, err := p.NewSupplier(nil).Credentials(context.Background())
		if err != nil {
			t.Errorf("NewSupplier(kind=%q).Credentials() error = %v, want nil", kind, err)
			continue
		}
		if creds.Identity != "" {
			t.Errorf("NewSupplier(kind=%q) identity = %q, want empty", kind, creds.Identity)
		}
	}
}

func TestNewSigner_UnknownOption(t *testing.T) {
	p := &Profile{Name: "bad", Signer: SignerConfig{Kind: "legacy", Options: map[string]any{"hash": "md5"}}}
	if _, err := p.NewSigner(); err == nil {
		t.Error("NewSigner() error = nil, want unsupported hash error")
	}
}

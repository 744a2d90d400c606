package request

import (
	"fmt"
	"mime"
	"net/url"
	"strings"
)

// ActionParam is the parameter carrying the operation name in
// form-encoded query APIs.
const ActionParam = "Action"

// Request is an immutable HTTP request description.
type Request struct {
	method Method
	scheme string
	host   string
	path   string
	header Header
	query  Query
	body   *Body
}

// New builds a request for method against endpoint. Any query string on
// endpoint is parsed into the request's query parameters.
func New(method Method, endpoint string) (*Request, error) {
	if method == "" {
		return nil, ErrEmptyMethod
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("%w: endpoint is empty", ErrMalformedEndpoint)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEndpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrMalformedEndpoint)
	}

	query, err := ParseQuery(u.RawQuery)
	if err != nil {
		return nil, err
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	return &Request{
		method: method,
		scheme: u.Scheme,
		host:   u.Host,
		path:   path,
		query:  query,
	}, nil
}

// MustNew is like New but panics on error. Intended for tests and static
// endpoints.
func MustNew(method Method, endpoint string) *Request {
	r, err := New(method, endpoint)
	if err != nil {
		panic(err)
	}
	return r
}

// Method returns the HTTP method.
func (r *Request) Method() Method { return r.method }

// Scheme returns the endpoint scheme, "http" or "https".
func (r *Request) Scheme() string { return r.scheme }

// Host returns the endpoint host, including any port.
func (r *Request) Host() string { return r.host }

// Path returns the unencoded request path; never empty.
func (r *Request) Path() string { return r.path }

// Header returns the request headers.
func (r *Request) Header() Header { return r.header }

// Query returns the ordered query parameters.
func (r *Request) Query() Query { return r.query }

// Body returns the payload, or nil when the request has none.
func (r *Request) Body() *Body { return r.body }

// Endpoint returns scheme, host and encoded path without the query string.
// It is safe to include in error messages: presigned query parameters are
// never part of it.
func (r *Request) Endpoint() string {
	return r.scheme + "://" + r.host + EncodePath(r.path)
}

// URL returns the full request URL with the encoded query.
func (r *Request) URL() string {
	if r.query.Len() == 0 {
		return r.Endpoint()
	}
	return r.Endpoint() + "?" + r.query.Encode()
}

// Action returns the embedded action name of a form-encoded API call,
// looked up in the query first and then in an in-memory form body.
func (r *Request) Action() string {
	if v, ok := r.query.Get(ActionParam); ok {
		return v
	}
	if r.body == nil {
		return ""
	}
	data, ok := r.body.Bytes()
	if !ok {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(r.body.ContentType()); err != nil || mt != "application/x-www-form-urlencoded" {
		return ""
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return ""
	}
	return values.Get(ActionParam)
}

// WithHeader returns a copy with name set to values, replacing any existing
// values.
func (r *Request) WithHeader(name string, values ...string) *Request {
	c := *r
	c.header = r.header.set(name, values...)
	return &c
}

// AddHeader returns a copy with value appended to name.
func (r *Request) AddHeader(name, value string) *Request {
	c := *r
	c.header = r.header.add(name, value)
	return &c
}

// WithoutHeader returns a copy with name removed.
func (r *Request) WithoutHeader(name string) *Request {
	c := *r
	c.header = r.header.del(name)
	return &c
}

// WithQueryParam returns a copy with key=value appended.
func (r *Request) WithQueryParam(key, value string) *Request {
	c := *r
	c.query = r.query.add(key, value)
	return &c
}

// SetQueryParam returns a copy with every key replaced by a single key=value.
func (r *Request) SetQueryParam(key, value string) *Request {
	c := *r
	c.query = r.query.set(key, value)
	return &c
}

// WithoutQueryParam returns a copy with key removed.
func (r *Request) WithoutQueryParam(key string) *Request {
	c := *r
	c.query = r.query.del(key)
	return &c
}

// WithQuery returns a copy whose query is replaced by q.
func (r *Request) WithQuery(q Query) *Request {
	c := *r
	c.query = Query{params: q.Params()}
	return &c
}

// WithPath returns a copy addressing path on the same host.
func (r *Request) WithPath(path string) *Request {
	c := *r
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	c.path = path
	return &c
}

// WithBody returns a copy carrying body. The Content-Type header is set from
// the body when the body declares one.
func (r *Request) WithBody(body *Body) *Request {
	c := *r
	c.body = body
	if body != nil && body.ContentType() != "" {
		c.header = r.header.set("Content-Type", body.ContentType())
	}
	return &c
}

func (r *Request) String() string {
	return string(r.method) + " " + r.Endpoint()
}

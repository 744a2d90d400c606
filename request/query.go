package request

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered multimap of query parameters.
type Query struct {
	params []Param
}

// ParseQuery decodes a raw query string, keeping parameter order. Keys and
// values are form-decoded: '+' reads as a space and a literal plus must be
// sent as %2B.
func ParseQuery(raw string) (Query, error) {
	var q Query
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return Query{}, fmt.Errorf("%w: query key %q: %v", ErrMalformedEndpoint, k, err)
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return Query{}, fmt.Errorf("%w: query value for %q: %v", ErrMalformedEndpoint, key, err)
		}
		q.params = append(q.params, Param{Key: key, Value: val})
	}
	return q, nil
}

// Get returns the first value for key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns all values for key in order.
func (q Query) Values(key string) []string {
	var out []string
	for _, p := range q.params {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

// Has reports whether key is present.
func (q Query) Has(key string) bool {
	_, ok := q.Get(key)
	return ok
}

// Params returns a copy of the parameters in order.
func (q Query) Params() []Param {
	return append([]Param(nil), q.params...)
}

// Len returns the number of parameters.
func (q Query) Len() int {
	return len(q.params)
}

// Sorted returns a copy ordered by key, then value.
func (q Query) Sorted() Query {
	params := q.Params()
	sort.SliceStable(params, func(i, j int) bool {
		if params[i].Key != params[j].Key {
			return params[i].Key < params[j].Key
		}
		return params[i].Value < params[j].Value
	})
	return Query{params: params}
}

// Encode renders the query in order. A parameter with an empty value is
// rendered as its bare key ("acl", not "acl=").
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q.params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EncodeQueryComponent(p.Key))
		if p.Value != "" {
			b.WriteByte('=')
			b.WriteString(EncodeQueryComponent(p.Value))
		}
	}
	return b.String()
}

func (q Query) add(key, value string) Query {
	params := make([]Param, len(q.params), len(q.params)+1)
	copy(params, q.params)
	return Query{params: append(params, Param{Key: key, Value: value})}
}

// set replaces every occurrence of key with a single parameter kept at the
// position of the first occurrence.
func (q Query) set(key, value string) Query {
	params := make([]Param, 0, len(q.params)+1)
	replaced := false
	for _, p := range q.params {
		if p.Key != key {
			params = append(params, p)
			continue
		}
		if !replaced {
			params = append(params, Param{Key: key, Value: value})
			replaced = true
		}
	}
	if !replaced {
		params = append(params, Param{Key: key, Value: value})
	}
	return Query{params: params}
}

func (q Query) del(key string) Query {
	params := make([]Param, 0, len(q.params))
	for _, p := range q.params {
		if p.Key != key {
			params = append(params, p)
		}
	}
	return Query{params: params}
}

package request

import (
	"net/http"
	"strings"
)

// Header is an ordered, case-insensitive multimap of header fields.
// Names keep the case they were first added with, and fields keep their
// insertion order so canonicalization is deterministic.
type Header struct {
	fields []headerField
}

type headerField struct {
	name   string
	values []string
}

// Get returns the first value for name, or "" if absent.
func (h Header) Get(name string) string {
	if i := h.index(name); i >= 0 && len(h.fields[i].values) > 0 {
		return h.fields[i].values[0]
	}
	return ""
}

// Values returns a copy of all values for name.
func (h Header) Values(name string) []string {
	i := h.index(name)
	if i < 0 {
		return nil
	}
	return append([]string(nil), h.fields[i].values...)
}

// Has reports whether name is present.
func (h Header) Has(name string) bool {
	return h.index(name) >= 0
}

// Names returns field names in insertion order.
func (h Header) Names() []string {
	names := make([]string, len(h.fields))
	for i, f := range h.fields {
		names[i] = f.name
	}
	return names
}

// Len returns the number of distinct fields.
func (h Header) Len() int {
	return len(h.fields)
}

// HTTP converts h to a net/http header.
func (h Header) HTTP() http.Header {
	out := make(http.Header, len(h.fields))
	for _, f := range h.fields {
		key := http.CanonicalHeaderKey(f.name)
		out[key] = append(out[key], f.values...)
	}
	return out
}

func (h Header) index(name string) int {
	for i, f := range h.fields {
		if strings.EqualFold(f.name, name) {
			return i
		}
	}
	return -1
}

func (h Header) clone() Header {
	fields := make([]headerField, len(h.fields))
	for i, f := range h.fields {
		fields[i] = headerField{name: f.name, values: append([]string(nil), f.values...)}
	}
	return Header{fields: fields}
}

func (h Header) set(name string, values ...string) Header {
	out := h.clone()
	if i := out.index(name); i >= 0 {
		out.fields[i].values = append([]string(nil), values...)
		return out
	}
	out.fields = append(out.fields, headerField{name: name, values: append([]string(nil), values...)})
	return out
}

func (h Header) add(name, value string) Header {
	out := h.clone()
	if i := out.index(name); i >= 0 {
		out.fields[i].values = append(out.fields[i].values, value)
		return out
	}
	out.fields = append(out.fields, headerField{name: name, values: []string{value}})
	return out
}

func (h Header) del(name string) Header {
	i := h.index(name)
	if i < 0 {
		return h
	}
	out := h.clone()
	out.fields = append(out.fields[:i], out.fields[i+1:]...)
	return out
}

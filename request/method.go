package request

// Method is an HTTP verb.
type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

// Valid reports whether m is one of the known verbs.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodHead, MethodPost, MethodPut, MethodPatch,
		MethodDelete, MethodOptions, MethodTrace:
		return true
	default:
		return false
	}
}

// IsSafe reports whether m is a read-only verb.
func (m Method) IsSafe() bool {
	switch m {
	case MethodGet, MethodHead, MethodOptions, MethodTrace:
		return true
	default:
		return false
	}
}

// IsIdempotent reports whether repeating m has no additional side effects
// (RFC 9110 section 9.2.2).
func (m Method) IsIdempotent() bool {
	return m.IsSafe() || m == MethodPut || m == MethodDelete
}

func (m Method) String() string {
	return string(m)
}

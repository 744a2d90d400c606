package request

import "strings"

// QuerySafe lists the reserved characters left unencoded in query keys and
// values.
const QuerySafe = "/,"

// PathSafe lists the reserved characters left unencoded in paths.
const PathSafe = "/"

const upperhex = "0123456789ABCDEF"

// PercentEncode encodes every byte of s except the RFC 3986 unreserved set
// (ALPHA, DIGIT, '-', '.', '_', '~') and the bytes listed in safe. Space is
// encoded as %20, never '+'.
func PercentEncode(s, safe string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i], safe) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c, safe) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0f])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// EncodeQueryComponent encodes a query key or value with QuerySafe.
func EncodeQueryComponent(s string) string {
	return PercentEncode(s, QuerySafe)
}

// EncodePath encodes a URL path with PathSafe.
func EncodePath(p string) string {
	return PercentEncode(p, PathSafe)
}

func shouldEscape(c byte, safe string) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return false
	case c == '-' || c == '.' || c == '_' || c == '~':
		return false
	}
	return strings.IndexByte(safe, c) < 0
}

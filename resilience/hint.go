package resilience

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ResetHeaders are consulted in order for a quota reset hint.
var ResetHeaders = []string{"X-RateLimit-Reset", "RateLimit-Reset", "Retry-After"}

// epochThreshold separates epoch timestamps from delta-seconds values.
// 1e9 seconds is September 2001; no quota window is that long.
const epochThreshold = 1_000_000_000

// ParseResetHint returns the time until the server's quota resets.
//
// Values are epoch seconds, delta seconds, or (Retry-After only) an HTTP
// date. A hint in the past yields zero. ok is false when no header parses.
func ParseResetHint(header http.Header, now time.Time) (wait time.Duration, ok bool) {
	if header == nil {
		return 0, false
	}
	for _, name := range ResetHeaders {
		raw := strings.TrimSpace(header.Get(name))
		if raw == "" {
			continue
		}
		if d, ok := parseHintValue(raw, now); ok {
			return max(d, 0), true
		}
	}
	return 0, false
}

func parseHintValue(raw string, now time.Time) (time.Duration, bool) {
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs >= epochThreshold {
			whole := int64(secs)
			frac := int64((secs - float64(whole)) * float64(time.Second))
			return time.Unix(whole, frac).Sub(now), true
		}
		return time.Duration(secs * float64(time.Second)), true
	}
	if t, err := http.ParseTime(raw); err == nil {
		return t.Sub(now), true
	}
	return 0, false
}

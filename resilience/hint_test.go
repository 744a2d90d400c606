package resilience

import (
	"net/http"
	"testing"
	"time"
)

func TestParseResetHint(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		header http.Header
		want   time.Duration
		ok     bool
	}{
		{"none", http.Header{}, 0, false},
		{"nil", nil, 0, false},
		{"epoch", http.Header{"X-Ratelimit-Reset": {"1709294460"}}, time.Minute, true},
		{"delta", http.Header{"Ratelimit-Reset": {"30"}}, 30 * time.Second, true},
		{"fractional delta", http.Header{"Retry-After": {"1.5"}}, 1500 * time.Millisecond, true},
		{"http date", http.Header{"Retry-After": {"Fri, 01 Mar 2024 12:02:00 GMT"}}, 2 * time.Minute, true},
		{"past epoch", http.Header{"X-Ratelimit-Reset": {"1709290000"}}, 0, true},
		{"garbage skipped", http.Header{"X-Ratelimit-Reset": {"soon"}, "Retry-After": {"5"}}, 5 * time.Second, true},
		{"garbage only", http.Header{"Retry-After": {"later"}}, 0, false},
		{"first header wins", http.Header{"X-Ratelimit-Reset": {"10"}, "Retry-After": {"99"}}, 10 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseResetHint(tt.header, now)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseResetHint() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

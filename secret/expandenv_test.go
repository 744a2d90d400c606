package secret

import (
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("CLOUDCORE_REGION", "us-west-2")
	t.Setenv("X", "y")

	tests := []struct {
		in   string
		want string
	}{
		{"https://ec2.${CLOUDCORE_REGION}.amazonaws.com", "https://ec2.us-west-2.amazonaws.com"},
		{"$$${X}", "$y"},
		{"no variables", "no variables"},
		{"cost $$5", "cost $5"},
	}
	for _, tt := range tests {
		got, err := ExpandEnvStrict(tt.in)
		if err != nil {
			t.Errorf("ExpandEnvStrict(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExpandEnvStrict(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpandEnvStrict_ListsAllMissing(t *testing.T) {
	_, err := ExpandEnvStrict("${CLOUDCORE_ZZ_MISSING} ${CLOUDCORE_AA_MISSING} ${CLOUDCORE_ZZ_MISSING}")
	if err == nil {
		t.Fatal("ExpandEnvStrict() expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "CLOUDCORE_AA_MISSING, CLOUDCORE_ZZ_MISSING") {
		t.Errorf("error = %q, want sorted unique names", msg)
	}
}

package observe

import "strings"

// Operation identifies one logical cloud API call for telemetry purposes.
type Operation struct {
	Provider string // e.g. "aws", "openstack" (optional)
	Service  string // e.g. "ec2", "s3" (optional)
	Name     string // e.g. "DescribeInstances" (required)
}

// SpanName returns the deterministic span name for this operation.
// Format: dispatch.<provider>.<service>.<name>, empty parts omitted.
func (o Operation) SpanName() string {
	return "dispatch." + o.ID()
}

// ID returns the dot-joined non-empty parts.
func (o Operation) ID() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{o.Provider, o.Service, o.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Validate reports whether the operation can be instrumented.
func (o Operation) Validate() error {
	if o.Name == "" {
		return ErrMissingOperationName
	}
	return nil
}

// Result summarizes a completed operation.
type Result struct {
	// Attempts is the number of transport attempts made.
	Attempts int

	// StatusCode is the final HTTP status; zero when none was received.
	StatusCode int
}

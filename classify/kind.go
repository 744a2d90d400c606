package classify

// Kind is the provider-independent category of a failed call.
type Kind int

const (
	// Unclassified is the default for codes absent from a table.
	Unclassified Kind = iota
	NotFound
	AlreadyExists
	Conflict
	RateLimited
	Unauthorized
	InvalidArgument
	ServerBusy
)

var kindNames = map[Kind]string{
	Unclassified:    "unclassified",
	NotFound:        "not_found",
	AlreadyExists:   "already_exists",
	Conflict:        "conflict",
	RateLimited:     "rate_limited",
	Unauthorized:    "unauthorized",
	InvalidArgument: "invalid_argument",
	ServerBusy:      "server_busy",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Transient reports whether the server asked the caller to come back later.
// Transient kinds are retried regardless of request idempotency.
func (k Kind) Transient() bool {
	return k == RateLimited || k == ServerBusy
}

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return Unclassified, false
}

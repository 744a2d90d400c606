package classify

import "maps"

// Table maps provider error codes and HTTP statuses to kinds.
//
// Contract:
//   - Lookup consults Codes first, then Statuses, then returns Unclassified.
//   - Tables are data; they are never mutated after construction by this package.
type Table struct {
	// Name identifies the provider convention in logs and errors.
	Name string

	// Codes maps provider error codes (exact match) to kinds.
	Codes map[string]Kind

	// Statuses maps HTTP status codes to kinds when the code is unknown.
	Statuses map[int]Kind

	// TolerateDeleteNotFound treats NotFound on DELETE as success.
	TolerateDeleteNotFound bool
}

// Lookup returns the kind for a status and provider code.
func (t Table) Lookup(status int, code string) Kind {
	if code != "" {
		if k, ok := t.Codes[code]; ok {
			return k
		}
	}
	if k, ok := t.Statuses[status]; ok {
		return k
	}
	return Unclassified
}

// Merge returns a copy of t with entries from other layered on top.
// The tolerance flag is true when either table sets it.
func (t Table) Merge(other Table) Table {
	out := Table{
		Name:                   t.Name,
		Codes:                  maps.Clone(t.Codes),
		Statuses:               maps.Clone(t.Statuses),
		TolerateDeleteNotFound: t.TolerateDeleteNotFound || other.TolerateDeleteNotFound,
	}
	if out.Codes == nil {
		out.Codes = make(map[string]Kind, len(other.Codes))
	}
	if out.Statuses == nil {
		out.Statuses = make(map[int]Kind, len(other.Statuses))
	}
	if other.Name != "" {
		out.Name = other.Name
	}
	maps.Copy(out.Codes, other.Codes)
	maps.Copy(out.Statuses, other.Statuses)
	return out
}

func defaultStatuses() map[int]Kind {
	return map[int]Kind{
		400: InvalidArgument,
		401: Unauthorized,
		403: Unauthorized,
		404: NotFound,
		409: Conflict,
		412: Conflict,
		429: RateLimited,
		503: ServerBusy,
	}
}

// DefaultTable covers HTTP statuses and the common symbolic codes.
func DefaultTable() Table {
	return Table{
		Name: "default",
		Codes: map[string]Kind{
			"OBJECT_NOT_FOUND":        NotFound,
			"RESOURCE_NOT_FOUND":      NotFound,
			"RESOURCE_ALREADY_EXISTS": AlreadyExists,
			"CONFLICTING_OPERATION":   Conflict,
			"DIRECTORY_NOT_EMPTY":     Conflict,
			"SIGNATURE_MISMATCH":      Unauthorized,
			"INVALID_ARGUMENT":        InvalidArgument,
			"SERVER_BUSY":             ServerBusy,
			"TOO_MANY_REQUESTS":       RateLimited,
		},
		Statuses: defaultStatuses(),
	}
}

// AWSTable covers S3 and query-protocol services. Deletes are tolerant.
func AWSTable() Table {
	return DefaultTable().Merge(Table{
		Name: "aws",
		Codes: map[string]Kind{
			"NoSuchKey":                   NotFound,
			"NoSuchBucket":                NotFound,
			"NoSuchUpload":                NotFound,
			"InvalidInstanceID.NotFound":  NotFound,
			"ResourceNotFoundException":   NotFound,
			"BucketAlreadyExists":         AlreadyExists,
			"BucketAlreadyOwnedByYou":     AlreadyExists,
			"EntityAlreadyExists":         AlreadyExists,
			"BucketNotEmpty":              Conflict,
			"OperationAborted":            Conflict,
			"IncorrectState":              Conflict,
			"SignatureDoesNotMatch":       Unauthorized,
			"InvalidAccessKeyId":          Unauthorized,
			"AuthFailure":                 Unauthorized,
			"ExpiredToken":                Unauthorized,
			"RequestExpired":              Unauthorized,
			"AccessDenied":                Unauthorized,
			"InvalidParameterValue":       InvalidArgument,
			"InvalidArgument":             InvalidArgument,
			"MalformedXML":                InvalidArgument,
			"Throttling":                  RateLimited,
			"ThrottlingException":         RateLimited,
			"RequestLimitExceeded":        RateLimited,
			"SlowDown":                    RateLimited,
			"ServiceUnavailable":          ServerBusy,
			"InternalError":               Unclassified,
		},
		TolerateDeleteNotFound: true,
	})
}

// AtmosTable covers object stores that report numeric error codes.
func AtmosTable() Table {
	return DefaultTable().Merge(Table{
		Name: "atmos",
		Codes: map[string]Kind{
			"1003": NotFound,
			"1004": NotFound,
			"1016": AlreadyExists,
			"1023": Conflict,
			"1032": Unauthorized,
			"1040": ServerBusy,
			"1043": InvalidArgument,
		},
		TolerateDeleteNotFound: true,
	})
}

// OpenStackTable covers compute and object services using camelCase fault names.
func OpenStackTable() Table {
	return DefaultTable().Merge(Table{
		Name: "openstack",
		Codes: map[string]Kind{
			"itemNotFound":       NotFound,
			"badRequest":         InvalidArgument,
			"badMethod":          InvalidArgument,
			"conflictingRequest": Conflict,
			"buildInProgress":    Conflict,
			"unauthorized":       Unauthorized,
			"forbidden":          Unauthorized,
			"overLimit":          RateLimited,
			"serviceUnavailable": ServerBusy,
		},
		Statuses: map[int]Kind{413: RateLimited},
	})
}

// TableByName returns a built-in table.
func TableByName(name string) (Table, bool) {
	switch name {
	case "", "default":
		return DefaultTable(), true
	case "aws":
		return AWSTable(), true
	case "atmos":
		return AtmosTable(), true
	case "openstack":
		return OpenStackTable(), true
	default:
		return Table{}, false
	}
}

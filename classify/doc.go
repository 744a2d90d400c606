// Package classify maps terminal provider responses to a small error taxonomy.
//
// Provider conventions differ only in data: each provider contributes a
// [Table] from error codes and HTTP statuses to a [Kind]. A [Classifier]
// pairs a table with payload [Extractor]s that pull the provider code and
// message out of a response body or headers.
//
// Callers pattern-match on the kind:
//
//	if classify.IsKind(err, classify.NotFound) {
//	    return nil, nil // treat as empty result
//	}
//
// Tables may tolerate NotFound for DELETE requests, in which case
// [Classifier.Classify] returns nil and the delete is treated as a success.
package classify

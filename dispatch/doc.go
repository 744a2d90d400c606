// Package dispatch runs a logical cloud API operation: it signs, sends,
// retries, and classifies HTTP attempts until the operation succeeds or
// gives up.
//
// A Dispatcher holds only read-only collaborators (Transport, Signer,
// credentials Supplier, retry Policy, Classifier) plus an optional shared
// Throttle. Each call to Invoke owns exactly one in-flight attempt at a time;
// concurrent invocations are independent.
//
// # Attempt loop
//
// For every attempt the dispatcher waits on the throttle, fetches
// credentials, re-signs the request with the current clock, sends it, and
// releases the response. Signing errors and parser failures are never
// retried. Transport failures and throttling responses follow the Policy;
// other classified API errors are returned immediately as
// *classify.APIError.
//
// # Errors
//
// Every error returned by Invoke names the request method and endpoint and
// never includes credentials:
//
//   - *TransportError: I/O failure that could not be retried
//   - *SigningError: credentials or signing failed
//   - *RateLimitedError: the server asked for a wait longer than allowed
//   - *classify.APIError: a classified provider error
//   - *ExhaustedRetriesError: the attempt budget ran out
//   - *ParseError: the response parser failed on a successful response
//
// All of them implement ErrorKind() for telemetry labels.
package dispatch

// Package request provides the provider-agnostic canonical request model.
//
// A Request is immutable: every With*/Add* method returns a new value and
// leaves the receiver untouched, so a request can be re-signed on every retry
// attempt without carrying state from an earlier attempt.
//
// Query and header values destined for a URL are percent-encoded with
// PercentEncode. The encoder leaves '/' and ',' unencoded because both are
// legal in the canonical query grammar of most providers, and signers compute
// their signatures over this encoded form.
package request

// Package auth provides credentials, credential suppliers, and request
// signers.
//
// Signers are stateless: each Sign call reads the request, the credentials,
// and the signing time, and returns a new request carrying authentication
// headers or query parameters. Three families are provided:
//
//   - LegacySigner: a single HMAC over a canonical string, sent as
//     "Authorization: <scheme> <identity>:<signature>" or as a temporary
//     (pre-signed) URL.
//   - V4Signer: a scoped signature whose key is derived through the
//     date, region, service credential scope chain.
//   - JWTSigner: a compact JWT used as a bearer token or as a form-encoded
//     assertion.
//
// Signers can be built by name from configuration through DefaultRegistry
// ("anonymous", "legacy", "v4", "jwt").
//
// Suppliers hand out Credentials and are safe for concurrent use.
// RefreshingSupplier serializes refreshes so concurrent callers observe a
// single refresh.
package auth

// Package secret resolves credential references for signers.
//
// A value is either a literal, a strict environment expansion ("${NAME}"),
// or a reference of the form:
//
//	secretref:<provider>:<ref>
//
// References may also appear inline ("Bearer secretref:env:API_TOKEN").
// Providers never log or echo resolved values.
package secret

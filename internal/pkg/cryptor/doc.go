// Package cryptor provides the authenticated-encryption primitives used to
// protect data at rest: AES-256-GCM with a caller-supplied 12-byte IV, plus
// a cryptographically secure random source.
package cryptor

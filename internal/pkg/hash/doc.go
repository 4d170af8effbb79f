// Package hash derives and verifies password hashes.
//
// Hashes are produced with PBKDF2-HMAC-SHA256 over a random per-record salt
// and stored as a single "salt$hash" string, both halves base64 encoded.
package hash

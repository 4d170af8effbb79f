package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 iteration count used for the operator password.
	DefaultIterations = 100_000
	// SaltLength is the salt size in bytes.
	SaltLength = 16
	// KeyLength is the derived hash size in bytes.
	KeyLength = 32

	recordSeparator = "$"
)

// ErrMalformedRecord indicates a stored record that cannot be parsed.
var ErrMalformedRecord = errors.New("hash: malformed record")

// Record is a salted password hash.
type Record struct {
	Salt []byte
	Hash []byte
}

// String encodes the record as base64(salt)$base64(hash).
func (r Record) String() string {
	return base64.StdEncoding.EncodeToString(r.Salt) + recordSeparator + base64.StdEncoding.EncodeToString(r.Hash)
}

// ParseRecord decodes a record produced by Record.String.
func ParseRecord(s string) (Record, error) {
	saltPart, hashPart, ok := strings.Cut(s, recordSeparator)
	if !ok || saltPart == "" || hashPart == "" {
		return Record{}, ErrMalformedRecord
	}

	salt, err := base64.StdEncoding.DecodeString(saltPart)
	if err != nil {
		return Record{}, fmt.Errorf("%w: salt: %w", ErrMalformedRecord, err)
	}

	sum, err := base64.StdEncoding.DecodeString(hashPart)
	if err != nil {
		return Record{}, fmt.Errorf("%w: hash: %w", ErrMalformedRecord, err)
	}

	if len(salt) != SaltLength || len(sum) != KeyLength {
		return Record{}, ErrMalformedRecord
	}

	return Record{Salt: salt, Hash: sum}, nil
}

// PBKDF2 hashes passwords with PBKDF2-HMAC-SHA256.
type PBKDF2 struct {
	iterations int
}

// NewPBKDF2 returns a hasher with the given iteration count.
// A non-positive count falls back to DefaultIterations.
func NewPBKDF2(iterations int) *PBKDF2 {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &PBKDF2{iterations: iterations}
}

// Hash derives a new record from password with a fresh random salt.
func (p *PBKDF2) Hash(password string) (Record, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return Record{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	return Record{Salt: salt, Hash: p.derive(password, salt)}, nil
}

// Verify recomputes the hash with the record's salt and compares in constant time.
func (p *PBKDF2) Verify(rec Record, password string) bool {
	if len(rec.Salt) == 0 || len(rec.Hash) == 0 {
		return false
	}

	return subtle.ConstantTimeCompare(rec.Hash, p.derive(password, rec.Salt)) == 1
}

func (p *PBKDF2) derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, p.iterations, KeyLength, sha256.New)
}

// Package envelope wraps payloads in a versioned authenticated-encryption
// envelope of the form "v1:" + base64(iv) + ":" + base64(ciphertext+tag).
//
// Values without the literal version prefix are legacy plaintext JSON and are
// decoded as-is. Decryption is all-or-nothing: a tampered envelope or a wrong
// key yields an error and never partial data.
package envelope

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shandysiswandi/seedvault/internal/pkg/cryptor"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
)

// Version is the current envelope format.
const Version = "v1"

const prefix = Version + ":"

var (
	// ErrMissingKey indicates no master key was supplied.
	ErrMissingKey = errors.New("envelope: master key is not configured")
	// ErrMalformedKey indicates the master key is not base64 of KeySize bytes.
	ErrMalformedKey = errors.New("envelope: master key must be base64 of 32 bytes")
	// ErrMalformedEnvelope indicates a v1 value that cannot be parsed.
	ErrMalformedEnvelope = errors.New("envelope: malformed envelope")
)

// ParseMasterKey decodes a standard base64 master key of exactly
// cryptor.KeySize bytes.
func ParseMasterKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, goerror.NewConfiguration("Master key is not configured", ErrMissingKey)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(key) != cryptor.KeySize {
		return nil, goerror.NewConfiguration("Master key is malformed", ErrMalformedKey)
	}

	return key, nil
}

// IsEncrypted reports whether value carries the envelope version prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, prefix)
}

// Seal serializes payload to JSON and encrypts it under key with a fresh IV.
func Seal(aead cryptor.AEAD, key []byte, payload any) (string, error) {
	if len(key) == 0 {
		return "", goerror.NewConfiguration("Master key is not configured", ErrMissingKey)
	}
	if len(key) != cryptor.KeySize {
		return "", goerror.NewConfiguration("Master key is malformed", ErrMalformedKey)
	}

	plain, err := json.Marshal(payload)
	if err != nil {
		return "", goerror.NewServer(fmt.Errorf("envelope: encode payload: %w", err))
	}

	iv, err := cryptor.RandomBytes(cryptor.IVSize)
	if err != nil {
		return "", goerror.NewServer(err)
	}

	sealed, err := aead.Seal(key, iv, plain)
	if err != nil {
		return "", goerror.NewServer(err)
	}

	return prefix + base64.StdEncoding.EncodeToString(iv) + ":" + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decodes value into dst. A v1 envelope is authenticated and decrypted
// under key; anything else is decoded as legacy plaintext JSON.
func Open(aead cryptor.AEAD, key []byte, value string, dst any) error {
	if !IsEncrypted(value) {
		return decodeLegacy(value, dst)
	}

	if len(key) == 0 {
		return goerror.NewConfiguration("Stored data is encrypted but no master key is configured", ErrMissingKey)
	}

	plain, err := openV1(aead, key, value)
	if err != nil {
		return goerror.NewDecryption(err)
	}

	if err := json.Unmarshal(plain, dst); err != nil {
		return goerror.NewDecryption(fmt.Errorf("envelope: decode payload: %w", err))
	}

	return nil
}

func openV1(aead cryptor.AEAD, key []byte, value string) ([]byte, error) {
	parts := strings.Split(strings.TrimPrefix(value, prefix), ":")
	if len(parts) != 2 {
		return nil, ErrMalformedEnvelope
	}

	iv, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(iv) != cryptor.IVSize {
		return nil, ErrMalformedEnvelope
	}

	sealed, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrMalformedEnvelope
	}

	return aead.Open(key, iv, sealed)
}

func decodeLegacy(value string, dst any) error {
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return goerror.Wrap(goerror.KindInternal, "Stored data is neither an envelope nor valid JSON", err)
	}
	return nil
}

package cryptor

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// IVSize is the GCM nonce length in bytes.
	IVSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

var (
	// ErrInvalidKeyLength indicates the key is not KeySize bytes.
	ErrInvalidKeyLength = errors.New("cryptor: invalid key length")
	// ErrInvalidIVLength indicates the IV is not IVSize bytes.
	ErrInvalidIVLength = errors.New("cryptor: invalid iv length")
	// ErrCiphertextTooShort indicates input shorter than the authentication tag.
	ErrCiphertextTooShort = errors.New("cryptor: ciphertext too short")
	// ErrDecryptFailed indicates authentication failed (tampering or wrong key).
	ErrDecryptFailed = errors.New("cryptor: decrypt failed")
)

// AEAD seals and opens payloads with an explicit IV.
type AEAD interface {
	// Seal returns ciphertext with the authentication tag appended.
	Seal(key, iv, plaintext []byte) ([]byte, error)
	// Open authenticates and decrypts sealed; it returns no data on failure.
	Open(key, iv, sealed []byte) ([]byte, error)
}

// AESGCM implements AEAD using AES-256-GCM.
type AESGCM struct{}

// NewAESGCM returns an AES-256-GCM implementation.
func NewAESGCM() *AESGCM {
	return &AESGCM{}
}

// Seal encrypts plaintext under key and iv.
func (*AESGCM) Seal(key, iv, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: got %d want %d", ErrInvalidIVLength, len(iv), IVSize)
	}

	return gcm.Seal(nil, iv, plaintext, nil), nil
}

// Open decrypts sealed under key and iv.
func (*AESGCM) Open(key, iv, sealed []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: got %d want %d", ErrInvalidIVLength, len(iv), IVSize)
	}
	if len(sealed) < TagSize {
		return nil, ErrCiphertextTooShort
	}

	plain, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		// Tampering and a wrong key are indistinguishable here.
		return nil, ErrDecryptFailed
	}
	return plain, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d want %d", ErrInvalidKeyLength, len(key), KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptor: aes init failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptor: gcm init failed: %w", err)
	}
	return gcm, nil
}

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("cryptor: random read failed: %w", err)
	}
	return b, nil
}

package envelope

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/seedvault/internal/pkg/cryptor"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
)

// Codec encrypts when a master key is configured and falls back to plain
// JSON when none is. A key that is present but invalid is rejected at
// construction, so a misconfigured key never degrades to plaintext.
type Codec struct {
	aead cryptor.AEAD
	key  []byte
}

// NewCodec builds a Codec from a base64 master key. An empty key selects
// plain mode.
func NewCodec(aead cryptor.AEAD, encodedKey string) (*Codec, error) {
	if strings.TrimSpace(encodedKey) == "" {
		slog.Warn("vault master key is not configured, payloads are stored as plain JSON")
		return &Codec{aead: aead}, nil
	}

	key, err := ParseMasterKey(encodedKey)
	if err != nil {
		return nil, err
	}

	return &Codec{aead: aead, key: key}, nil
}

// Encrypted reports whether the codec writes envelopes.
func (c *Codec) Encrypted() bool {
	return len(c.key) > 0
}

// Encrypt returns the stored form of payload.
func (c *Codec) Encrypt(ctx context.Context, payload any) (string, error) {
	if c.Encrypted() {
		return Seal(c.aead, c.key, payload)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", goerror.NewServer(fmt.Errorf("envelope: encode payload: %w", err))
	}
	slog.WarnContext(ctx, "writing payload without encryption")

	return string(raw), nil
}

// Decrypt decodes a stored value in either form into dst.
func (c *Codec) Decrypt(value string, dst any) error {
	return Open(c.aead, c.key, value, dst)
}

// Package kvstore is the durable key-value boundary the vault keeps all of its
// state in: the credential record, rate-limit windows and the encrypted secret
// collection.
//
// The contract is intentionally small: get, put with an optional best-effort
// TTL, and delete. There is no compare-and-swap and no transaction support, so
// callers doing read-modify-write must tolerate lost updates.
package kvstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a key-value store with optional per-key expiry.
type Store interface {
	io.Closer

	// Get returns the value stored at key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value at key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte, opts ...PutOption) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// PutOption customizes a Put call.
type PutOption func(*PutOptions)

// PutOptions holds the resolved Put settings.
type PutOptions struct {
	// TTL is the best-effort expiry; zero means the key never expires.
	TTL time.Duration
}

// WithTTL expires the key after d. Non-positive values are ignored.
func WithTTL(d time.Duration) PutOption {
	return func(o *PutOptions) {
		if d > 0 {
			o.TTL = d
		}
	}
}

// ApplyPutOptions resolves opts into a PutOptions value.
func ApplyPutOptions(opts ...PutOption) PutOptions {
	var o PutOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

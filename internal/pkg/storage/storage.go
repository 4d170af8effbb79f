// Package storage keeps vault backups in object storage.
//
// Every adapter is bound to one bucket at construction. Objects are small
// (one encrypted collection each), so they are moved as byte slices.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrObjectNotFound indicates the key does not exist in the bucket.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrDisabled indicates no storage driver is configured.
	ErrDisabled = errors.New("storage: backup storage is not configured")
)

// Storage defines the object operations used for backups.
type Storage interface {
	io.Closer

	// Put stores data under key.
	Put(ctx context.Context, key string, data []byte, opts PutOptions) (ObjectInfo, error)
	// Get reads the object under key.
	Get(ctx context.Context, key string) ([]byte, ObjectInfo, error)
	// List returns objects under prefix, at most limit when limit > 0.
	List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error)
	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error
}

// PutOptions configures upload behavior.
type PutOptions struct {
	// ContentType is the MIME type for the object.
	ContentType string
	// Metadata includes custom key/value metadata.
	Metadata map[string]string
}

// ObjectInfo describes object metadata.
type ObjectInfo struct {
	// Key is the object key.
	Key string `json:"key"`
	// Size is the object size in bytes.
	Size int64 `json:"size"`
	// ETag is the object ETag when provided.
	ETag string `json:"etag,omitempty"`
	// ContentType is the object MIME type.
	ContentType string `json:"content_type,omitempty"`
	// Metadata is user-defined metadata.
	Metadata map[string]string `json:"metadata,omitempty"`
	// UpdatedAt is the last modified time.
	UpdatedAt time.Time `json:"updated_at"`
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverS3 selects the AWS S3 backend.
	DriverS3 = "s3"
	// DriverGCS selects the Google Cloud Storage backend.
	DriverGCS = "gcs"
	// DriverMinIO selects the MinIO backend.
	DriverMinIO = "minio"
	// DriverMemory selects the in-process backend.
	DriverMemory = "memory"
	// DriverNone disables backups.
	DriverNone = "none"
)

// ErrUnknownDriver indicates an unsupported storage driver.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// FactoryOptions groups configuration for storage drivers.
type FactoryOptions struct {
	// Bucket is the bucket every adapter writes to.
	Bucket string
	// S3 configures the S3 backend.
	S3 S3Options
	// GCS configures the GCS backend.
	GCS GCSOptions
	// MinIO configures the MinIO backend.
	MinIO MinIOOptions
}

// NewFromDriver constructs a Storage implementation by driver name. An empty
// driver is the same as DriverNone.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Storage, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" || driver == DriverNone {
		return Disabled{}, nil
	}
	if driver != DriverMemory && strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("storage: bucket is required for driver %s", driver)
	}

	switch driver {
	case DriverS3:
		return NewS3(ctx, opts.Bucket, opts.S3)
	case DriverGCS:
		return NewGCS(ctx, opts.Bucket, opts.GCS)
	case DriverMinIO:
		return NewMinIO(opts.Bucket, opts.MinIO)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

// Disabled is the Storage used when backups are turned off.
type Disabled struct{}

// Put always fails with ErrDisabled.
func (Disabled) Put(context.Context, string, []byte, PutOptions) (ObjectInfo, error) {
	return ObjectInfo{}, ErrDisabled
}

// Get always fails with ErrDisabled.
func (Disabled) Get(context.Context, string) ([]byte, ObjectInfo, error) {
	return nil, ObjectInfo{}, ErrDisabled
}

// List always fails with ErrDisabled.
func (Disabled) List(context.Context, string, int) ([]ObjectInfo, error) {
	return nil, ErrDisabled
}

// Delete always fails with ErrDisabled.
func (Disabled) Delete(context.Context, string) error {
	return ErrDisabled
}

// Close is a no-op.
func (Disabled) Close() error {
	return nil
}

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
)

const (
	// DriverRedis selects the Redis backend.
	DriverRedis = "redis"
	// DriverPostgres selects the PostgreSQL backend.
	DriverPostgres = "postgres"
	// DriverMemory selects the in-process backend.
	DriverMemory = "memory"
)

// ErrUnknownDriver indicates an unsupported kvstore driver.
var ErrUnknownDriver = errors.New("kvstore: unknown driver")

// FactoryOptions groups configuration for supported backends.
type FactoryOptions struct {
	// Redis configures the Redis backend.
	Redis RedisOptions
	// Postgres configures the PostgreSQL backend.
	Postgres PostgresOptions
	// Clock drives expiry for the memory backend.
	Clock clock.Clocker
}

// NewFromDriver constructs a Store by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverRedis:
		return NewRedisFromURL(ctx, opts.Redis)
	case DriverPostgres:
		return NewPostgresFromURL(ctx, opts.Postgres)
	case DriverMemory:
		c := opts.Clock
		if c == nil {
			c = clock.New()
		}
		return NewMemory(c), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

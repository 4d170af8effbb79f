package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Store on top of a Redis client.
type Redis struct {
	client *redis.Client
}

// RedisOptions configures NewRedisFromURL.
type RedisOptions struct {
	// URL is a redis:// or rediss:// connection string.
	URL string
	// PingTimeout bounds the initial connectivity check.
	PingTimeout time.Duration
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// NewRedisFromURL connects to Redis and verifies the connection with a ping.
func NewRedisFromURL(ctx context.Context, opts RedisOptions) (*Redis, error) {
	opt, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("kvstore: parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("kvstore: ping redis: %w", err)
	}

	return NewRedis(rdb), nil
}

// Get returns the value at key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Put stores value at key with an optional TTL.
func (r *Redis) Put(ctx context.Context, key string, value []byte, opts ...PutOption) error {
	o := ApplyPutOptions(opts...)
	return r.client.Set(ctx, key, value, o.TTL).Err()
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

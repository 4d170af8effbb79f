package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultPostgresTable is used when PostgresOptions.Table is empty.
const DefaultPostgresTable = "kv_entries"

// Postgres implements Store on a single table:
//
//	key TEXT PRIMARY KEY, value BYTEA NOT NULL, expires_at TIMESTAMPTZ NULL
//
// Expired rows are filtered on read and overwritten on the next Put.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
	now   func() time.Time
}

// PostgresOptions configures NewPostgresFromURL.
type PostgresOptions struct {
	// URL is a PostgreSQL connection string.
	URL string
	// Table overrides DefaultPostgresTable.
	Table string
	// MaxConns caps the pool size when positive.
	MaxConns int32
	// MinConns keeps idle connections warm when positive.
	MinConns int32
	// MaxConnLifetime recycles connections when positive.
	MaxConnLifetime time.Duration
	// MaxConnIdleTime closes idle connections when positive.
	MaxConnIdleTime time.Duration
	// PingTimeout bounds the initial connectivity check.
	PingTimeout time.Duration
}

// NewPostgres wraps an existing pool and makes sure the table exists.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, table string) (*Postgres, error) {
	if table == "" {
		table = DefaultPostgresTable
	}

	p := &Postgres{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
		now:   time.Now,
	}

	if err := p.ensureSchema(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

// NewPostgresFromURL creates a pool, pings it and prepares the table.
func NewPostgresFromURL(ctx context.Context, opts PostgresOptions) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("kvstore: parse postgres url: %w", err)
	}

	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("kvstore: create postgres pool: %w", err)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("kvstore: ping postgres: %w", err)
	}

	p, err := NewPostgres(ctx, pool, opts.Table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		expires_at TIMESTAMPTZ NULL
	)`, p.table))
	if err != nil {
		return fmt.Errorf("kvstore: ensure schema: %w", err)
	}
	return nil
}

// Get returns the value at key unless it has expired.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`, p.table),
		key, p.now(),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put upserts value at key.
func (p *Postgres) Put(ctx context.Context, key string, value []byte, opts ...PutOption) error {
	o := ApplyPutOptions(opts...)

	var expiresAt *time.Time
	if o.TTL > 0 {
		t := p.now().Add(o.TTL)
		expiresAt = &t
	}

	_, err := p.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (key, value, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`, p.table),
		key, value, expiresAt,
	)
	return err
}

// Delete removes key.
func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, p.table), key)
	return err
}

// PurgeExpired deletes rows whose expiry has passed and reports how many were removed.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at <= $1`, p.table),
		p.now(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every driver must share.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "contract:missing")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put get overwrite", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "contract:a", []byte("one")))
		got, err := s.Get(ctx, "contract:a")
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), got)

		require.NoError(t, s.Put(ctx, "contract:a", []byte("two")))
		got, err = s.Get(ctx, "contract:a")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "contract:b", []byte("x")))
		require.NoError(t, s.Delete(ctx, "contract:b"))
		_, err := s.Get(ctx, "contract:b")
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.Delete(ctx, "contract:never-existed"))
	})

	t.Run("ttl keeps value until expiry", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "contract:ttl", []byte("v"), WithTTL(time.Minute)))
		got, err := s.Get(ctx, "contract:ttl")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})
}

func TestMemory_Contract(t *testing.T) {
	runStoreContract(t, NewMemory(clock.New()))
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	c := clock.NewManual(time.Unix(1_700_000_000, 0))
	m := NewMemory(c)

	require.NoError(t, m.Put(ctx, "k", []byte("v"), WithTTL(10*time.Second)))

	c.Advance(9 * time.Second)
	_, err := m.Get(ctx, "k")
	require.NoError(t, err)

	c.Advance(time.Second)
	_, err = m.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(clock.New())

	buf := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", buf))
	buf[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestWithTTL_IgnoresNonPositive(t *testing.T) {
	assert.Zero(t, ApplyPutOptions(WithTTL(-time.Second)).TTL)
	assert.Equal(t, time.Second, ApplyPutOptions(WithTTL(time.Second)).TTL)
}

func TestNewFromDriver(t *testing.T) {
	s, err := NewFromDriver(context.Background(), " Memory ", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = NewFromDriver(context.Background(), "etcd", FactoryOptions{})
	require.ErrorIs(t, err, ErrUnknownDriver)
}

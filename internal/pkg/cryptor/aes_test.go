package cryptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRandom(t *testing.T, n int) []byte {
	t.Helper()
	b, err := RandomBytes(n)
	require.NoError(t, err)
	return b
}

func TestAESGCM_SealOpen(t *testing.T) {
	c := NewAESGCM()
	key := mustRandom(t, KeySize)
	iv := mustRandom(t, IVSize)

	sealed, err := c.Seal(key, iv, []byte("seed material"))
	require.NoError(t, err)
	assert.Len(t, sealed, len("seed material")+TagSize)

	plain, err := c.Open(key, iv, sealed)
	require.NoError(t, err)
	assert.Equal(t, "seed material", string(plain))
}

func TestAESGCM_Open_Failures(t *testing.T) {
	c := NewAESGCM()
	key := mustRandom(t, KeySize)
	iv := mustRandom(t, IVSize)

	sealed, err := c.Seal(key, iv, []byte("payload"))
	require.NoError(t, err)

	t.Run("tampered", func(t *testing.T) {
		bad := append([]byte(nil), sealed...)
		bad[0] ^= 0x01
		plain, err := c.Open(key, iv, bad)
		require.ErrorIs(t, err, ErrDecryptFailed)
		assert.Nil(t, plain)
	})

	t.Run("wrong key", func(t *testing.T) {
		_, err := c.Open(mustRandom(t, KeySize), iv, sealed)
		require.ErrorIs(t, err, ErrDecryptFailed)
	})

	t.Run("wrong iv", func(t *testing.T) {
		_, err := c.Open(key, mustRandom(t, IVSize), sealed)
		require.ErrorIs(t, err, ErrDecryptFailed)
	})

	t.Run("short", func(t *testing.T) {
		_, err := c.Open(key, iv, sealed[:TagSize-1])
		require.ErrorIs(t, err, ErrCiphertextTooShort)
	})
}

func TestAESGCM_InvalidParams(t *testing.T) {
	c := NewAESGCM()

	_, err := c.Seal(make([]byte, 16), make([]byte, IVSize), nil)
	require.ErrorIs(t, err, ErrInvalidKeyLength)

	_, err = c.Seal(make([]byte, KeySize), make([]byte, 8), nil)
	require.ErrorIs(t, err, ErrInvalidIVLength)
}

package kv

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/cryptor"
	"github.com/shandysiswandi/seedvault/internal/pkg/envelope"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/kvstore"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const masterKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func newKV(t *testing.T, key string) (*KV, *kvstore.Memory) {
	t.Helper()
	store := kvstore.NewMemory(clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	codec, err := envelope.NewCodec(cryptor.NewAESGCM(), key)
	require.NoError(t, err)
	return New(store, codec, instrument.NewNoop()), store
}

func TestKV_LoadEmpty(t *testing.T) {
	t.Parallel()

	repo, _ := newKV(t, masterKey)

	secrets, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, secrets)

	raw, err := repo.LoadRaw(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestKV_SaveLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, store := newKV(t, masterKey)
	in := []entity.Secret{{ID: 1, Account: "me", Seed: "JBSWY3DPEHPK3PXP", Type: "totp", Algorithm: "SHA1", Digits: 6, Period: 30}}

	require.NoError(t, repo.Save(ctx, in))

	stored, err := store.Get(ctx, KeySecrets)
	require.NoError(t, err)
	assert.True(t, envelope.IsEncrypted(string(stored)))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.True(t, repo.Encrypted())
}

func TestKV_SaveNilWritesEmptyList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, store := newKV(t, "")

	require.NoError(t, repo.Save(ctx, nil))

	stored, err := store.Get(ctx, KeySecrets)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(stored))
	assert.False(t, repo.Encrypted())
}

func TestKV_TamperedEnvelope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, store := newKV(t, masterKey)
	require.NoError(t, repo.Save(ctx, []entity.Secret{{ID: 1, Seed: "AAAA"}}))

	stored, err := store.Get(ctx, KeySecrets)
	require.NoError(t, err)
	stored[len(stored)-2] ^= 1
	require.NoError(t, store.Put(ctx, KeySecrets, stored))

	_, err = repo.Load(ctx)
	assert.True(t, goerror.IsKind(err, goerror.KindDecryption))
}

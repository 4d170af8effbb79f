package credential

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/hash"
	"github.com/shandysiswandi/seedvault/internal/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodPassword = "Vault#2024pass"

func newManager(t *testing.T) (*Manager, *kvstore.Memory) {
	t.Helper()
	store := kvstore.NewMemory(clock.New())
	return NewManager(store, hash.NewPBKDF2(1000)), store
}

func TestCheckPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{name: "valid", password: goodPassword},
		{name: "valid exactly eight", password: "Ab1!abcd"},
		{name: "short", password: "Ab1!abc", want: []string{ViolationLength}},
		{name: "no upper", password: "vault#2024pass", want: []string{ViolationUpper}},
		{name: "no lower", password: "VAULT#2024PASS", want: []string{ViolationLower}},
		{name: "no digit", password: "Vault#password", want: []string{ViolationDigit}},
		{name: "no symbol", password: "Vault2024pass", want: []string{ViolationSymbol}},
		{name: "space is not a symbol", password: "Abcdefg1 ", want: []string{ViolationSymbol}},
		{name: "tab is not a symbol", password: "Abcdefg1\t", want: []string{ViolationSymbol}},
		{name: "no-break space is not a symbol", password: "Abcdefg1\u00a0", want: []string{ViolationSymbol}},
		{name: "unicode symbol", password: "Abcdefg1€", want: nil},
		{name: "empty", password: "", want: []string{ViolationLength, ViolationUpper, ViolationLower, ViolationDigit, ViolationSymbol}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPolicy(tt.password))
		})
	}
}

func TestManager_SetCredential(t *testing.T) {
	ctx := context.Background()

	t.Run("weak password is a validation error", func(t *testing.T) {
		m, _ := newManager(t)
		err := m.SetCredential(ctx, "weak")
		require.True(t, goerror.IsKind(err, goerror.KindValidation), err)

		var ge *goerror.Error
		require.ErrorAs(t, err, &ge)
		assert.Contains(t, ge.Fields(), "password")

		ok, err := m.HasCredential(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("second call conflicts", func(t *testing.T) {
		m, _ := newManager(t)
		require.NoError(t, m.SetCredential(ctx, goodPassword))

		err := m.SetCredential(ctx, goodPassword)
		assert.True(t, goerror.IsKind(err, goerror.KindConflict), err)
	})

	t.Run("stored as salt$hash", func(t *testing.T) {
		m, store := newManager(t)
		require.NoError(t, m.SetCredential(ctx, goodPassword))

		raw, err := store.Get(ctx, KeyCredential)
		require.NoError(t, err)
		rec, err := hash.ParseRecord(string(raw))
		require.NoError(t, err)
		assert.NotContains(t, string(raw), goodPassword)

		key, err := m.SigningKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, rec.Hash, key)
	})
}

func TestManager_HashIsSalted(t *testing.T) {
	ctx := context.Background()
	m1, s1 := newManager(t)
	m2, s2 := newManager(t)

	require.NoError(t, m1.SetCredential(ctx, goodPassword))
	require.NoError(t, m2.SetCredential(ctx, goodPassword))

	r1, _ := s1.Get(ctx, KeyCredential)
	r2, _ := s2.Get(ctx, KeyCredential)
	assert.NotEqual(t, r1, r2)

	for _, m := range []*Manager{m1, m2} {
		ok, err := m.VerifyCredential(ctx, goodPassword)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = m.VerifyCredential(ctx, goodPassword+"x")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestManager_VerifyCredential_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no credential", func(t *testing.T) {
		m, _ := newManager(t)
		_, err := m.VerifyCredential(ctx, goodPassword)
		assert.True(t, goerror.IsKind(err, goerror.KindAuthorization), err)
	})

	t.Run("corrupt record", func(t *testing.T) {
		m, store := newManager(t)
		require.NoError(t, store.Put(ctx, KeyCredential, []byte("garbage")))

		_, err := m.VerifyCredential(ctx, goodPassword)
		require.True(t, goerror.IsKind(err, goerror.KindInternal), err)
		assert.ErrorIs(t, err, hash.ErrMalformedRecord)
	})

	t.Run("store failure", func(t *testing.T) {
		m := NewManager(failingStore{}, hash.NewPBKDF2(10))
		_, err := m.VerifyCredential(ctx, goodPassword)
		assert.True(t, goerror.IsKind(err, goerror.KindInternal), err)
	})
}

func TestManager_SetupMarker(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	done, err := m.SetupCompleted(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, m.MarkSetupCompleted(ctx))

	done, err = m.SetupCompleted(ctx)
	require.NoError(t, err)
	assert.True(t, done)
}

type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (failingStore) Put(context.Context, string, []byte, ...kvstore.PutOption) error {
	return errStoreDown
}
func (failingStore) Delete(context.Context, string) error { return errStoreDown }
func (failingStore) Close() error                         { return nil }

package envelope

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/shandysiswandi/seedvault/internal/pkg/cryptor"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Seeds []string `json:"seeds"`
}

func newKey(t *testing.T) []byte {
	t.Helper()
	k, err := cryptor.RandomBytes(cryptor.KeySize)
	require.NoError(t, err)
	return k
}

func TestParseMasterKey(t *testing.T) {
	valid := base64.StdEncoding.EncodeToString(make([]byte, 32))

	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{name: "valid", encoded: valid},
		{name: "valid with whitespace", encoded: "  " + valid + "\n"},
		{name: "empty", encoded: "", wantErr: ErrMissingKey},
		{name: "not base64", encoded: "%%%not-base64%%%", wantErr: ErrMalformedKey},
		{name: "short", encoded: base64.StdEncoding.EncodeToString(make([]byte, 16)), wantErr: ErrMalformedKey},
		{name: "long", encoded: base64.StdEncoding.EncodeToString(make([]byte, 33)), wantErr: ErrMalformedKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseMasterKey(tt.encoded)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, goerror.IsKind(err, goerror.KindConfiguration))
				assert.Nil(t, key)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key, 32)
		})
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	aead := cryptor.NewAESGCM()
	key := newKey(t)
	in := payload{Name: "github", Seeds: []string{"JBSWY3DPEHPK3PXP", "ünïcødé"}}

	value, err := Seal(aead, key, in)
	require.NoError(t, err)
	assert.True(t, IsEncrypted(value))
	assert.NotContains(t, value, "JBSWY3DPEHPK3PXP")

	parts := strings.Split(value, ":")
	require.Len(t, parts, 3)
	assert.Equal(t, "v1", parts[0])
	iv, err := base64.StdEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Len(t, iv, cryptor.IVSize)

	var out payload
	require.NoError(t, Open(aead, key, value, &out))
	assert.Equal(t, in, out)
}

func TestSeal_NonDeterministic(t *testing.T) {
	aead := cryptor.NewAESGCM()
	key := newKey(t)

	a, err := Seal(aead, key, "same")
	require.NoError(t, err)
	b, err := Seal(aead, key, "same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	var outA, outB string
	require.NoError(t, Open(aead, key, a, &outA))
	require.NoError(t, Open(aead, key, b, &outB))
	assert.Equal(t, "same", outA)
	assert.Equal(t, "same", outB)
}

func TestSeal_RequiresValidKey(t *testing.T) {
	aead := cryptor.NewAESGCM()

	_, err := Seal(aead, nil, "x")
	assert.True(t, goerror.IsKind(err, goerror.KindConfiguration))

	_, err = Seal(aead, []byte("short"), "x")
	assert.True(t, goerror.IsKind(err, goerror.KindConfiguration))
}

func TestOpen_TamperDetection(t *testing.T) {
	aead := cryptor.NewAESGCM()
	key := newKey(t)

	value, err := Seal(aead, key, payload{Name: "x"})
	require.NoError(t, err)

	parts := strings.Split(value, ":")
	sealed, err := base64.StdEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for i := range sealed {
		flipped := append([]byte(nil), sealed...)
		flipped[i] ^= 0x01
		tampered := parts[0] + ":" + parts[1] + ":" + base64.StdEncoding.EncodeToString(flipped)

		var out payload
		err := Open(aead, key, tampered, &out)
		require.Error(t, err, "byte %d", i)
		assert.True(t, goerror.IsKind(err, goerror.KindDecryption))
		assert.Empty(t, out.Name)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	aead := cryptor.NewAESGCM()

	value, err := Seal(aead, newKey(t), "secret")
	require.NoError(t, err)

	var out string
	err = Open(aead, newKey(t), value, &out)
	require.ErrorIs(t, err, cryptor.ErrDecryptFailed)
	assert.True(t, goerror.IsKind(err, goerror.KindDecryption))
	assert.Empty(t, out)
}

func TestOpen_Malformed(t *testing.T) {
	aead := cryptor.NewAESGCM()
	key := newKey(t)

	for _, value := range []string{
		"v1:",
		"v1:onlyone",
		"v1:a:b:c",
		"v1:!!!:AAAA",
		"v1:" + base64.StdEncoding.EncodeToString(make([]byte, 8)) + ":AAAA",
		"v1:" + base64.StdEncoding.EncodeToString(make([]byte, 12)) + ":AAAA",
	} {
		var out string
		err := Open(aead, key, value, &out)
		assert.True(t, goerror.IsKind(err, goerror.KindDecryption), value)
	}
}

func TestOpen_Legacy(t *testing.T) {
	aead := cryptor.NewAESGCM()

	var out payload
	require.NoError(t, Open(aead, newKey(t), `{"name":"legacy","seeds":["A"]}`, &out))
	assert.Equal(t, payload{Name: "legacy", Seeds: []string{"A"}}, out)

	out = payload{}
	require.NoError(t, Open(aead, nil, `{"name":"legacy"}`, &out))
	assert.Equal(t, "legacy", out.Name)

	err := Open(aead, nil, "v2:something", &out)
	assert.True(t, goerror.IsKind(err, goerror.KindInternal))
}

func TestIsEncrypted(t *testing.T) {
	assert.True(t, IsEncrypted("v1:abc:def"))
	assert.False(t, IsEncrypted(`{"v1":"x"}`))
	assert.False(t, IsEncrypted("v1"))
	assert.False(t, IsEncrypted(""))
}

func TestCodec(t *testing.T) {
	ctx := context.Background()
	aead := cryptor.NewAESGCM()
	encodedKey := base64.StdEncoding.EncodeToString(newKey(t))

	t.Run("invalid key is rejected", func(t *testing.T) {
		c, err := NewCodec(aead, "not-a-key")
		assert.Nil(t, c)
		assert.True(t, goerror.IsKind(err, goerror.KindConfiguration))
	})

	t.Run("encrypted mode", func(t *testing.T) {
		c, err := NewCodec(aead, encodedKey)
		require.NoError(t, err)
		assert.True(t, c.Encrypted())

		value, err := c.Encrypt(ctx, payload{Name: "enc"})
		require.NoError(t, err)
		assert.True(t, IsEncrypted(value))

		var out payload
		require.NoError(t, c.Decrypt(value, &out))
		assert.Equal(t, "enc", out.Name)

		require.NoError(t, c.Decrypt(`{"name":"old"}`, &out))
		assert.Equal(t, "old", out.Name)
	})

	t.Run("plain mode", func(t *testing.T) {
		c, err := NewCodec(aead, "")
		require.NoError(t, err)
		assert.False(t, c.Encrypted())

		value, err := c.Encrypt(ctx, payload{Name: "plain"})
		require.NoError(t, err)
		assert.False(t, IsEncrypted(value))
		assert.JSONEq(t, `{"name":"plain","seeds":null}`, value)

		var out payload
		require.NoError(t, c.Decrypt(value, &out))
		assert.Equal(t, "plain", out.Name)

		enc, err := Seal(aead, newKey(t), payload{Name: "enc"})
		require.NoError(t, err)
		err = c.Decrypt(enc, &out)
		assert.True(t, goerror.IsKind(err, goerror.KindConfiguration))
	})
}

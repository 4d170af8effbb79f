package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPBKDF2_HashVerify(t *testing.T) {
	h := NewPBKDF2(1000)

	a, err := h.Hash("Correct#Horse1")
	require.NoError(t, err)
	b, err := h.Hash("Correct#Horse1")
	require.NoError(t, err)

	assert.Len(t, a.Salt, SaltLength)
	assert.Len(t, a.Hash, KeyLength)
	assert.NotEqual(t, a.String(), b.String(), "fresh salt per hash")

	assert.True(t, h.Verify(a, "Correct#Horse1"))
	assert.True(t, h.Verify(b, "Correct#Horse1"))
	assert.False(t, h.Verify(a, "Correct#Horse2"))
	assert.False(t, h.Verify(Record{}, "Correct#Horse1"))
}

func TestRecord_RoundTrip(t *testing.T) {
	rec, err := NewPBKDF2(10).Hash("x")
	require.NoError(t, err)

	encoded := rec.String()
	assert.Equal(t, 1, strings.Count(encoded, "$"))

	parsed, err := ParseRecord(encoded)
	require.NoError(t, err)
	assert.Equal(t, rec, parsed)
}

func TestParseRecord_Malformed(t *testing.T) {
	for _, in := range []string{"", "nodelimiter", "$abc", "abc$", "!!!$AAAA", "AAAA$AAAA"} {
		_, err := ParseRecord(in)
		assert.ErrorIs(t, err, ErrMalformedRecord, in)
	}
}

func TestNewPBKDF2_Default(t *testing.T) {
	assert.Equal(t, DefaultIterations, NewPBKDF2(0).iterations)
}

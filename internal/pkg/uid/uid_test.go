package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Generate(t *testing.T) {
	g := NewUUID()

	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestSnowflake_Generate(t *testing.T) {
	g, err := NewSnowflakeWithNode(1)
	require.NoError(t, err)

	prev := g.Generate()
	for range 100 {
		next := g.Generate()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestSnowflake_InvalidNode(t *testing.T) {
	_, err := NewSnowflakeWithNode(4096)
	require.Error(t, err)
}

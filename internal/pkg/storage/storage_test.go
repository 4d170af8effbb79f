package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	data := []byte("v1:payload")
	info, err := m.Put(ctx, "backups/a.json", data, PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"secrets": "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "backups/a.json", info.Key)
	assert.EqualValues(t, len(data), info.Size)
	assert.NotEmpty(t, info.ETag)

	data[0] = 'x'

	got, gotInfo, err := m.Get(ctx, "backups/a.json")
	require.NoError(t, err)
	assert.Equal(t, "v1:payload", string(got))
	assert.Equal(t, "application/json", gotInfo.ContentType)
	assert.Equal(t, "2", gotInfo.Metadata["secrets"])
}

func TestMemory_GetMissing(t *testing.T) {
	t.Parallel()

	_, _, err := NewMemory().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestMemory_ListAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	for _, k := range []string{"backups/3", "backups/1", "other/1", "backups/2"} {
		_, err := m.Put(ctx, k, []byte(k), PutOptions{})
		require.NoError(t, err)
	}

	list, err := m.List(ctx, "backups/", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "backups/1", list[0].Key)
	assert.Equal(t, "backups/3", list[2].Key)

	list, err = m.List(ctx, "backups/", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, m.Delete(ctx, "backups/1"))
	require.NoError(t, m.Delete(ctx, "backups/1"))

	list, err = m.List(ctx, "backups/", 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, m.Close())
	list, err = m.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNewFromDriver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	s, err := NewFromDriver(ctx, "", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, s)

	s, err = NewFromDriver(ctx, " NONE ", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, s)

	s, err = NewFromDriver(ctx, "memory", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = NewFromDriver(ctx, "s3", FactoryOptions{})
	require.Error(t, err)

	_, err = NewFromDriver(ctx, "ftp", FactoryOptions{Bucket: "b"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	s, err = NewFromDriver(ctx, "minio", FactoryOptions{
		Bucket: "b",
		MinIO:  MinIOOptions{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"},
	})
	require.NoError(t, err)
	assert.IsType(t, &MinIOAdapter{}, s)
}

func TestDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var d Disabled

	_, err := d.Put(ctx, "k", nil, PutOptions{})
	assert.ErrorIs(t, err, ErrDisabled)
	_, _, err = d.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = d.List(ctx, "", 0)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, d.Delete(ctx, "k"), ErrDisabled)
	assert.NoError(t, d.Close())
}

package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/config"
	"github.com/shandysiswandi/seedvault/internal/pkg/cryptor"
	"github.com/shandysiswandi/seedvault/internal/pkg/envelope"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/kvstore"
	"github.com/shandysiswandi/seedvault/internal/pkg/storage"
	"github.com/shandysiswandi/seedvault/internal/pkg/uid"
	"github.com/shandysiswandi/seedvault/internal/pkg/validator"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
	"github.com/shandysiswandi/seedvault/internal/vault/outbound/blob"
	"github.com/shandysiswandi/seedvault/internal/vault/outbound/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	masterKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="
	otherKey  = "ZmVkY2JhOTg3NjU0MzIxMGZlZGNiYTk4NzY1NDMyMTA="

	// RFC 4226 / RFC 6238 test seed "12345678901234567890".
	rfcSeed = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
)

type fixture struct {
	uc      *Usecase
	clock   *clock.Manual
	store   *kvstore.Memory
	objects *storage.Memory
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	key     string
	objects storage.Storage
	yaml    string
}

func withKey(key string) fixtureOption {
	return func(c *fixtureConfig) { c.key = key }
}

func withStorage(s storage.Storage) fixtureOption {
	return func(c *fixtureConfig) { c.objects = s }
}

func withConfig(yaml string) fixtureOption {
	return func(c *fixtureConfig) { c.yaml = yaml }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	mem := storage.NewMemory()
	fc := fixtureConfig{key: masterKey, objects: mem, yaml: "backup:\n  retention: 2\n"}
	for _, opt := range opts {
		opt(&fc)
	}

	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 59, 0, time.UTC))
	store := kvstore.NewMemory(clk)
	ins := instrument.NewNoop()

	codec, err := envelope.NewCodec(cryptor.NewAESGCM(), fc.key)
	require.NoError(t, err)

	cfg, err := config.NewViperFromBytes("yaml", []byte(fc.yaml))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	sf, err := uid.NewSnowflake()
	require.NoError(t, err)

	uc := New(Dependency{
		RepoKV:     kv.New(store, codec, ins),
		RepoBlob:   blob.New(fc.objects, ins, 1),
		Validator:  v,
		Config:     cfg,
		Clock:      clk,
		Snowflake:  sf,
		Instrument: ins,
	})

	return &fixture{uc: uc, clock: clk, store: store, objects: mem}
}

func (f *fixture) raw(t *testing.T) string {
	t.Helper()
	v, err := f.store.Get(context.Background(), kv.KeySecrets)
	require.NoError(t, err)
	return string(v)
}

func (f *fixture) create(t *testing.T, in CreateInput) *entity.Secret {
	t.Helper()
	sec, err := f.uc.Create(context.Background(), in)
	require.NoError(t, err)
	return sec
}

func TestUsecase_CreateStoresEnvelope(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sec := f.create(t, CreateInput{Issuer: "GitHub", Account: "me@example.com", Seed: "jbsw y3dp ehpk 3pxp"})

	assert.NotZero(t, sec.ID)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", sec.Seed)
	assert.Equal(t, "totp", sec.Type)
	assert.Equal(t, "SHA1", sec.Algorithm)
	assert.Equal(t, 6, sec.Digits)
	assert.Equal(t, uint(30), sec.Period)

	raw := f.raw(t)
	assert.True(t, envelope.IsEncrypted(raw))
	assert.NotContains(t, raw, "JBSWY3DPEHPK3PXP")
	assert.NotContains(t, raw, "GitHub")
}

func TestUsecase_CreateErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.create(t, CreateInput{Issuer: "GitHub", Account: "me", Seed: "JBSWY3DPEHPK3PXP"})

	tests := []struct {
		name string
		in   CreateInput
		kind goerror.Kind
	}{
		{name: "missing account", in: CreateInput{Seed: "JBSWY3DPEHPK3PXP"}, kind: goerror.KindValidation},
		{name: "bad algorithm", in: CreateInput{Account: "a", Seed: "JBSWY3DPEHPK3PXP", Algorithm: "MD5"}, kind: goerror.KindValidation},
		{name: "bad digits", in: CreateInput{Account: "a", Seed: "JBSWY3DPEHPK3PXP", Digits: 7}, kind: goerror.KindValidation},
		{name: "seed not base32", in: CreateInput{Account: "a", Seed: "not-base32!"}, kind: goerror.KindValidation},
		{name: "duplicate", in: CreateInput{Issuer: "github", Account: "ME", Seed: "jbswy3dpehpk3pxp"}, kind: goerror.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, goerror.KindOf(err))
		})
	}
}

func TestUsecase_ListGetUpdateDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	gh := f.create(t, CreateInput{Issuer: "GitHub", Account: "me", Seed: "JBSWY3DPEHPK3PXP"})
	aws := f.create(t, CreateInput{Issuer: "aws", Account: "root", Seed: rfcSeed})

	all, err := f.uc.List(ctx, ListInput{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, aws.ID, all[0].ID)
	assert.Equal(t, gh.ID, all[1].ID)

	found, err := f.uc.List(ctx, ListInput{Search: "GIT"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, gh.ID, found[0].ID)

	got, err := f.uc.Get(ctx, GetInput{ID: gh.ID})
	require.NoError(t, err)
	assert.Equal(t, "GitHub", got.Issuer)

	f.clock.Advance(time.Minute)
	issuer := " GitHub Enterprise "
	updated, err := f.uc.Update(ctx, UpdateInput{ID: gh.ID, Issuer: &issuer})
	require.NoError(t, err)
	assert.Equal(t, "GitHub Enterprise", updated.Issuer)
	assert.Equal(t, "me", updated.Account)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	counter := uint64(3)
	_, err = f.uc.Update(ctx, UpdateInput{ID: gh.ID, Counter: &counter})
	assert.True(t, goerror.IsKind(err, goerror.KindValidation))

	require.NoError(t, f.uc.Delete(ctx, DeleteInput{ID: gh.ID}))
	_, err = f.uc.Get(ctx, GetInput{ID: gh.ID})
	assert.True(t, goerror.IsKind(err, goerror.KindNotFound))
	assert.True(t, goerror.IsKind(f.uc.Delete(ctx, DeleteInput{ID: gh.ID}), goerror.KindNotFound))

	all, err = f.uc.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUsecase_Code(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	totp := f.create(t, CreateInput{Account: "totp", Seed: rfcSeed, Digits: 8})
	f.clock.Set(time.Unix(59, 0))
	code, err := f.uc.Code(ctx, CodeInput{ID: totp.ID})
	require.NoError(t, err)
	assert.Equal(t, "94287082", code.Code)
	assert.Equal(t, 1, code.Remaining)

	hotp := f.create(t, CreateInput{Account: "hotp", Seed: rfcSeed, Type: "hotp"})
	first, err := f.uc.Code(ctx, CodeInput{ID: hotp.ID})
	require.NoError(t, err)
	assert.Equal(t, "755224", first.Code)
	assert.Equal(t, uint64(0), first.Counter)

	second, err := f.uc.Code(ctx, CodeInput{ID: hotp.ID})
	require.NoError(t, err)
	assert.Equal(t, "287082", second.Code)

	stored, err := f.uc.Get(ctx, GetInput{ID: hotp.ID})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stored.Counter)

	_, err = f.uc.Code(ctx, CodeInput{ID: 42})
	assert.True(t, goerror.IsKind(err, goerror.KindNotFound))
}

func TestUsecase_ImportExport(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.create(t, CreateInput{Issuer: "GitHub", Account: "me", Seed: "JBSWY3DPEHPK3PXP"})

	res, err := f.uc.Import(ctx, ImportInput{
		URIs: []string{
			"otpauth://totp/GitHub:me?secret=JBSWY3DPEHPK3PXP&issuer=GitHub",
			"otpauth://hotp/Bank:acct?secret=" + rfcSeed + "&counter=5",
			"https://example.com/not-otp",
		},
		Entries: []ImportEntry{
			{Issuer: "Microsoft", Account: "me@outlook.com", Secret: "SGVsbG8h3q2+7w==", Encoding: entity.SecretEncodingBase64},
			{Issuer: "Broken", Account: "x", Secret: "***", Encoding: entity.SecretEncodingBase64},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Imported, 2)
	assert.Equal(t, "hotp", res.Imported[0].Type)
	assert.Equal(t, uint64(5), res.Imported[0].Counter)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", res.Imported[1].Seed)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, 2, res.Failures[0].Index)
	assert.Equal(t, 4, res.Failures[1].Index)

	uris, err := f.uc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, uris, 3)
	for _, u := range uris {
		assert.True(t, strings.HasPrefix(u, "otpauth://"), u)
	}

	_, err = f.uc.Import(ctx, ImportInput{})
	assert.True(t, goerror.IsKind(err, goerror.KindValidation))
}

func TestUsecase_BackupAndRestore(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Backup(ctx)
	assert.True(t, goerror.IsKind(err, goerror.KindNotFound))

	gh := f.create(t, CreateInput{Issuer: "GitHub", Account: "me", Seed: "JBSWY3DPEHPK3PXP"})

	first, err := f.uc.Backup(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Key, "backups/secrets-20260101T000059Z-"))
	assert.True(t, strings.HasSuffix(first.Key, ".v1"))

	data, info, err := f.objects.Get(ctx, first.Key)
	require.NoError(t, err)
	assert.Equal(t, f.raw(t), string(data))
	assert.Equal(t, "1", info.Metadata["secrets"])

	require.NoError(t, f.uc.Delete(ctx, DeleteInput{ID: gh.ID}))

	n, err := f.uc.Restore(ctx, RestoreInput{Key: first.Key})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.uc.Get(ctx, GetInput{ID: gh.ID})
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", got.Seed)

	_, err = f.uc.Restore(ctx, RestoreInput{Key: "backups/missing.v1"})
	assert.True(t, goerror.IsKind(err, goerror.KindNotFound))

	_, err = f.uc.Restore(ctx, RestoreInput{Key: "config/secret"})
	assert.True(t, goerror.IsKind(err, goerror.KindValidation))
}

func TestUsecase_BackupRetention(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.create(t, CreateInput{Account: "me", Seed: "JBSWY3DPEHPK3PXP"})

	var keys []string
	for range 4 {
		b, err := f.uc.Backup(ctx)
		require.NoError(t, err)
		keys = append(keys, b.Key)
		f.clock.Advance(time.Hour)
	}

	backups, err := f.uc.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, keys[3], backups[0].Key)
	assert.Equal(t, keys[2], backups[1].Key)
}

func TestUsecase_BackupRestoreErrors(t *testing.T) {
	t.Parallel()

	t.Run("plain mode", func(t *testing.T) {
		f := newFixture(t, withKey(""))
		f.create(t, CreateInput{Account: "me", Seed: "JBSWY3DPEHPK3PXP"})

		_, err := f.uc.Backup(context.Background())
		assert.True(t, goerror.IsKind(err, goerror.KindConfiguration))
	})

	t.Run("storage disabled", func(t *testing.T) {
		f := newFixture(t, withStorage(storage.Disabled{}))
		f.create(t, CreateInput{Account: "me", Seed: "JBSWY3DPEHPK3PXP"})

		_, err := f.uc.Backup(context.Background())
		assert.True(t, goerror.IsKind(err, goerror.KindConfiguration))

		_, err = f.uc.ListBackups(context.Background())
		assert.True(t, goerror.IsKind(err, goerror.KindConfiguration))
	})

	t.Run("backup from another key", func(t *testing.T) {
		shared := storage.NewMemory()
		src := newFixture(t, withKey(otherKey), withStorage(shared))
		src.create(t, CreateInput{Account: "me", Seed: "JBSWY3DPEHPK3PXP"})
		b, err := src.uc.Backup(context.Background())
		require.NoError(t, err)

		dst := newFixture(t, withStorage(shared))
		_, err = dst.uc.Restore(context.Background(), RestoreInput{Key: b.Key})
		assert.True(t, goerror.IsKind(err, goerror.KindDecryption))
	})
}

func TestUsecase_Migrate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	res, err := f.uc.Migrate(ctx)
	require.NoError(t, err)
	assert.False(t, res.Migrated)

	legacy := `[{"id":1,"issuer":"GitHub","account":"me","seed":"JBSWY3DPEHPK3PXP","type":"totp","algorithm":"SHA1","digits":6,"period":30}]`
	require.NoError(t, f.store.Put(ctx, kv.KeySecrets, []byte(legacy)))

	list, err := f.uc.List(ctx, ListInput{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.uc.Backup(ctx)
	assert.True(t, goerror.IsKind(err, goerror.KindConfiguration))

	res, err = f.uc.Migrate(ctx)
	require.NoError(t, err)
	assert.True(t, res.Migrated)
	assert.Equal(t, 1, res.Count)
	assert.True(t, envelope.IsEncrypted(f.raw(t)))

	res, err = f.uc.Migrate(ctx)
	require.NoError(t, err)
	assert.False(t, res.Migrated)
	assert.Equal(t, 1, res.Count)

	plain := newFixture(t, withKey(""))
	_, err = plain.uc.Migrate(ctx)
	assert.True(t, goerror.IsKind(err, goerror.KindConfiguration))
}

func TestUsecase_Retention_Default(t *testing.T) {
	t.Parallel()

	f := newFixture(t, withConfig(""))
	ctx := context.Background()
	f.create(t, CreateInput{Account: "me", Seed: "JBSWY3DPEHPK3PXP"})

	for range defaultRetention + 2 {
		_, err := f.uc.Backup(ctx)
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}

	backups, err := f.uc.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, backups, defaultRetention)
}

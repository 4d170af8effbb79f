package blob

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/storage"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Prefix is the object key prefix of every backup.
const Prefix = "backups/"

const contentType = "text/plain; charset=utf-8"

// Blob keeps backups in object storage. Transient failures are retried with
// a capped exponential backoff.
type Blob struct {
	client   storage.Storage
	ins      instrument.Instrumentation
	attempts uint64
	base     time.Duration
}

func New(client storage.Storage, ins instrument.Instrumentation, attempts int) *Blob {
	if attempts < 1 {
		attempts = 3
	}
	return &Blob{client: client, ins: ins, attempts: uint64(attempts), base: 200 * time.Millisecond}
}

func (b *Blob) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return b.ins.Tracer("vault.outbound.blob").Start(ctx, name)
}

func (b *Blob) backoff() retry.Backoff {
	bo := retry.NewExponential(b.base)
	bo = retry.WithCappedDuration(2*time.Second, bo)
	return retry.WithMaxRetries(b.attempts-1, bo)
}

// do retries fn unless the failure can never succeed.
func (b *Blob) do(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, b.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || permanent(err) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func permanent(err error) bool {
	return err == storage.ErrDisabled || err == storage.ErrObjectNotFound //nolint:errorlint // sentinels are returned unwrapped
}

func (b *Blob) Upload(ctx context.Context, key string, data []byte, meta map[string]string) (*entity.Backup, error) {
	ctx, span := b.span(ctx, "Upload")
	defer span.End()

	span.SetAttributes(attribute.String("backup.key", key))

	var info storage.ObjectInfo
	err := b.do(ctx, func(ctx context.Context) error {
		var err error
		info, err = b.client.Put(ctx, key, data, storage.PutOptions{ContentType: contentType, Metadata: meta})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	createdAt := info.UpdatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return &entity.Backup{Key: key, Size: int64(len(data)), CreatedAt: createdAt}, nil
}

func (b *Blob) Download(ctx context.Context, key string) ([]byte, error) {
	ctx, span := b.span(ctx, "Download")
	defer span.End()

	var data []byte
	err := b.do(ctx, func(ctx context.Context) error {
		var err error
		data, _, err = b.client.Get(ctx, key)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return data, nil
}

// List returns backups newest first. Keys embed a sortable UTC timestamp.
func (b *Blob) List(ctx context.Context) ([]entity.Backup, error) {
	ctx, span := b.span(ctx, "List")
	defer span.End()

	var objects []storage.ObjectInfo
	err := b.do(ctx, func(ctx context.Context) error {
		var err error
		objects, err = b.client.List(ctx, Prefix, 0)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	backups := make([]entity.Backup, 0, len(objects))
	for _, o := range objects {
		backups = append(backups, entity.Backup{Key: o.Key, Size: o.Size, CreatedAt: o.UpdatedAt})
	}
	slices.SortFunc(backups, func(x, y entity.Backup) int {
		return strings.Compare(y.Key, x.Key)
	})

	return backups, nil
}

func (b *Blob) Delete(ctx context.Context, key string) error {
	ctx, span := b.span(ctx, "Delete")
	defer span.End()

	if err := b.do(ctx, func(ctx context.Context) error {
		return b.client.Delete(ctx, key)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

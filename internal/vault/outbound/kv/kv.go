package kv

import (
	"context"
	"errors"

	"github.com/shandysiswandi/seedvault/internal/pkg/envelope"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/kvstore"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// KeySecrets holds the whole secret collection.
const KeySecrets = "vault:secrets"

// KV persists the secret collection through the envelope codec. Nothing else
// writes KeySecrets, so every stored form is either an envelope or, without a
// master key, plain JSON.
type KV struct {
	store kvstore.Store
	codec *envelope.Codec
	ins   instrument.Instrumentation
}

func New(store kvstore.Store, codec *envelope.Codec, ins instrument.Instrumentation) *KV {
	return &KV{store: store, codec: codec, ins: ins}
}

func (k *KV) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return k.ins.Tracer("vault.outbound.kv").Start(ctx, name)
}

// LoadRaw returns the stored value as is, or "" when nothing is stored.
func (k *KV) LoadRaw(ctx context.Context) (string, error) {
	ctx, span := k.span(ctx, "LoadRaw")
	defer span.End()

	raw, err := k.store.Get(ctx, KeySecrets)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return string(raw), nil
}

// Load decodes the stored collection. A missing collection is empty.
func (k *KV) Load(ctx context.Context) ([]entity.Secret, error) {
	raw, err := k.LoadRaw(ctx)
	if err != nil || raw == "" {
		return nil, err
	}

	return k.Decode(raw)
}

// Decode opens a stored or backed-up value.
func (k *KV) Decode(raw string) ([]entity.Secret, error) {
	var secrets []entity.Secret
	if err := k.codec.Decrypt(raw, &secrets); err != nil {
		return nil, err
	}
	return secrets, nil
}

// Save encodes secrets and replaces the stored collection.
func (k *KV) Save(ctx context.Context, secrets []entity.Secret) error {
	ctx, span := k.span(ctx, "Save")
	defer span.End()

	if secrets == nil {
		secrets = []entity.Secret{}
	}

	value, err := k.codec.Encrypt(ctx, secrets)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := k.store.Put(ctx, KeySecrets, []byte(value)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// Encrypted reports whether Save writes envelopes.
func (k *KV) Encrypted() bool {
	return k.codec.Encrypted()
}

package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedvault/internal/pkg/envelope"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
)

// Migrate rewrites a plaintext collection as an envelope. It is a no-op when
// the collection is empty or already encrypted.
func (s *Usecase) Migrate(ctx context.Context) (*entity.MigrateResult, error) {
	ctx, span := s.startSpan(ctx, "Migrate")
	defer span.End()

	if !s.repoKV.Encrypted() {
		slog.WarnContext(ctx, "migration requested without master key")
		return nil, goerror.NewConfiguration("Master key is not configured", envelope.ErrMissingKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.repoKV.LoadRaw(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load stored secrets", "error", err)
		return nil, goerror.NewServer(err)
	}
	if raw == "" {
		return &entity.MigrateResult{}, nil
	}

	secrets, err := s.repoKV.Decode(raw)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decode stored secrets", "error", err)
		return nil, serverErr(err)
	}

	if envelope.IsEncrypted(raw) {
		return &entity.MigrateResult{Count: len(secrets)}, nil
	}

	if err := s.save(ctx, secrets); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "plaintext secrets migrated to envelope", "count", len(secrets))

	return &entity.MigrateResult{Migrated: true, Count: len(secrets)}, nil
}

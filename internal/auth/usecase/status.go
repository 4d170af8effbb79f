package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedvault/internal/auth/entity"
)

func (s *Usecase) Status(ctx context.Context) (*entity.Status, error) {
	ctx, span := s.startSpan(ctx, "Status")
	defer span.End()

	done, err := s.credential.SetupCompleted(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read setup marker", "error", err)
		return nil, err
	}

	return &entity.Status{
		SetupCompleted:    done,
		EncryptionEnabled: s.encryption.Encrypted(),
	}, nil
}

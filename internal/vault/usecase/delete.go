package usecase

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
)

type DeleteInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) Delete(ctx context.Context, in DeleteInput) error {
	ctx, span := s.startSpan(ctx, "Delete")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.load(ctx)
	if err != nil {
		return err
	}

	i := indexOf(secrets, in.ID)
	if i < 0 {
		return goerror.NewNotFound("Secret not found")
	}

	if err := s.save(ctx, slices.Delete(secrets, i, i+1)); err != nil {
		return err
	}

	slog.InfoContext(ctx, "secret deleted", "id", in.ID)

	return nil
}

package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/otp"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
)

type CodeInput struct {
	ID int64 `validate:"required,gt=0"`
}

// Code returns the current code of a secret. HOTP secrets advance their
// counter, so every call yields a new code.
func (s *Usecase) Code(ctx context.Context, in CodeInput) (*entity.Code, error) {
	ctx, span := s.startSpan(ctx, "Code")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(secrets, in.ID)
	if i < 0 {
		return nil, goerror.NewNotFound("Secret not found")
	}

	sec := secrets[i]
	code, err := otp.Generate(sec.Key(), s.now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "id", sec.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &entity.Code{Code: code.Code, Remaining: code.Remaining}
	if sec.Type != otp.TypeHOTP {
		return out, nil
	}

	out.Counter = sec.Counter
	secrets[i].Counter++
	secrets[i].UpdatedAt = s.now()
	if err := s.save(ctx, secrets); err != nil {
		return nil, err
	}

	return out, nil
}

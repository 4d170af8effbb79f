package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/otp"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
)

// UpdateInput changes the labels of a secret. Nil fields are left untouched.
// The seed itself is immutable.
type UpdateInput struct {
	ID      int64   `validate:"required,gt=0"`
	Issuer  *string `validate:"omitempty,max=128"`
	Account *string `validate:"omitempty,min=1,max=256"`
	Counter *uint64
}

func (s *Usecase) Update(ctx context.Context, in UpdateInput) (*entity.Secret, error) {
	ctx, span := s.startSpan(ctx, "Update")
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
	if in.Issuer != nil {
		sec.Issuer = strings.TrimSpace(*in.Issuer)
	}
	if in.Account != nil {
		sec.Account = strings.TrimSpace(*in.Account)
		if sec.Account == "" {
			return nil, goerror.NewValidation("Validation error", "account", "account is a required field")
		}
	}
	if in.Counter != nil {
		if sec.Type != otp.TypeHOTP {
			return nil, goerror.NewValidation("Validation error", "counter", "counter applies to hotp secrets only")
		}
		sec.Counter = *in.Counter
	}

	for j, other := range secrets {
		if j != i && other.SameSeed(sec) {
			return nil, goerror.NewConflict("Secret already exists")
		}
	}

	sec.UpdatedAt = s.now()
	secrets[i] = sec

	if err := s.save(ctx, secrets); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "secret updated", "id", sec.ID)

	return &sec, nil
}

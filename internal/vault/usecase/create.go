package usecase

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/otp"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
)

type CreateInput struct {
	Issuer    string `validate:"max=128"`
	Account   string `validate:"required,max=256"`
	Seed      string `validate:"required,max=512"`
	Type      string `validate:"omitempty,oneof=totp hotp TOTP HOTP"`
	Algorithm string `validate:"otpalgorithm"`
	Digits    int    `validate:"omitempty,oneof=6 8"`
	Period    uint   `validate:"omitempty,min=1,max=300"`
	Counter   uint64
}

func (s *Usecase) Create(ctx context.Context, in CreateInput) (*entity.Secret, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	key, err := otp.Key{
		Type:      in.Type,
		Issuer:    in.Issuer,
		Account:   in.Account,
		Secret:    in.Seed,
		Algorithm: in.Algorithm,
		Digits:    in.Digits,
		Period:    in.Period,
		Counter:   in.Counter,
	}.Normalize()
	if err != nil {
		slog.WarnContext(ctx, "rejected secret parameters", "error", err)
		return nil, goerror.NewValidation("Validation error", "seed", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	sec := entity.FromKey(s.snowflake.Generate(), key, s.now())
	if slices.ContainsFunc(secrets, sec.SameSeed) {
		slog.WarnContext(ctx, "secret already stored", "issuer", sec.Issuer)
		return nil, goerror.NewConflict("Secret already exists")
	}

	if err := s.save(ctx, append(secrets, sec)); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "secret created", "id", sec.ID, "issuer", sec.Issuer, "type", sec.Type)

	return &sec, nil
}

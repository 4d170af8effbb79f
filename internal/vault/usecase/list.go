package usecase

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
)

type ListInput struct {
	Search string `validate:"max=128"`
}

// List returns the secrets whose issuer or account contains the search term,
// ordered by issuer then account.
func (s *Usecase) List(ctx context.Context, in ListInput) ([]entity.Secret, error) {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	secrets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	result := lo.Filter(secrets, func(sec entity.Secret, _ int) bool {
		return sec.Matches(in.Search)
	})

	slices.SortFunc(result, func(a, b entity.Secret) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Issuer), strings.ToLower(b.Issuer)),
			strings.Compare(strings.ToLower(a.Account), strings.ToLower(b.Account)),
			cmp.Compare(a.ID, b.ID),
		)
	})

	return result, nil
}

type GetInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) Get(ctx context.Context, in GetInput) (*entity.Secret, error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	secrets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	sec, ok := lo.Find(secrets, func(sec entity.Secret) bool { return sec.ID == in.ID })
	if !ok {
		return nil, goerror.NewNotFound("Secret not found")
	}

	return &sec, nil
}

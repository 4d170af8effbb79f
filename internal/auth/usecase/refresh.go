package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedvault/internal/auth/entity"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/jwt"
)

type RefreshInput struct {
	Token string
}

func (s *Usecase) Refresh(ctx context.Context, in RefreshInput) (*entity.Session, error) {
	ctx, span := s.startSpan(ctx, "Refresh")
	defer span.End()

	if in.Token == "" {
		return nil, goerror.NewAuthentication("Authentication required")
	}

	key, err := s.signingKey(ctx)
	if err != nil {
		return nil, err
	}

	token, err := s.session.Refresh(in.Token, key)
	if err != nil {
		slog.WarnContext(ctx, "failed to refresh session", "error", err)
		return nil, err
	}

	return &entity.Session{
		Token:     token,
		Reason:    jwt.ReasonRefresh,
		ExpiresAt: s.clock.Now().Add(s.session.TTL()),
	}, nil
}

// signingKey loads the key for verifying presented tokens. Before setup no
// token can be valid, so that case is reported as an authentication failure.
func (s *Usecase) signingKey(ctx context.Context) ([]byte, error) {
	key, err := s.credential.SigningKey(ctx)
	if goerror.IsKind(err, goerror.KindAuthorization) {
		slog.WarnContext(ctx, "session presented before setup")
		return nil, goerror.NewAuthentication("Session is invalid or expired")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load signing key", "error", err)
		return nil, err
	}

	return key, nil
}

package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedvault/internal/auth/entity"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/jwt"
)

type SetupInput struct {
	Password string `validate:"required,strongpassword"`
	ClientID string
}

func (s *Usecase) Setup(ctx context.Context, in SetupInput) (*entity.Session, error) {
	ctx, span := s.startSpan(ctx, "Setup")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	res := s.limiter.Check(ctx, "setup:"+in.ClientID, s.loginPolicy)
	if !res.Allowed {
		slog.WarnContext(ctx, "setup attempt rate limited", "client", in.ClientID, "retry_after", res.RetryAfter())
		return nil, goerror.NewTooManyRequests("Too many setup attempts, try again later", res.RetryAfter())
	}

	if err := s.credential.SetCredential(ctx, in.Password); err != nil {
		slog.WarnContext(ctx, "failed to set operator credential", "client", in.ClientID, "error", err)
		return nil, err
	}

	if err := s.credential.MarkSetupCompleted(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to mark setup completed", "error", err)
		return nil, goerror.NewServer(err)
	}

	key, err := s.credential.SigningKey(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load signing key after setup", "error", err)
		return nil, err
	}

	sess, err := s.issue(key, jwt.ReasonSetup, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue setup session", "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "vault setup completed", "client", in.ClientID)
	s.publish(ctx, entity.SecurityEvent{Type: entity.EventSetupCompleted, Client: in.ClientID})

	return sess, nil
}

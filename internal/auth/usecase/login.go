package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedvault/internal/auth/entity"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/jwt"
)

type LoginInput struct {
	Password string `validate:"required"`
	ClientID string
}

func (s *Usecase) Login(ctx context.Context, in LoginInput) (*entity.Session, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	limitKey := "login:" + in.ClientID
	res := s.limiter.Check(ctx, limitKey, s.loginPolicy)
	if !res.Allowed {
		slog.WarnContext(ctx, "login attempt rate limited", "client", in.ClientID, "retry_after", res.RetryAfter())
		return nil, goerror.NewTooManyRequests("Too many login attempts, try again later", res.RetryAfter())
	}

	done, err := s.credential.SetupCompleted(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read setup marker", "error", err)
		return nil, err
	}
	if !done {
		slog.WarnContext(ctx, "login before setup", "client", in.ClientID)
		return nil, goerror.NewAuthorization("Setup has not been completed")
	}

	ok, err := s.credential.VerifyCredential(ctx, in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify operator credential", "error", err)
		return nil, err
	}

	if !ok {
		slog.WarnContext(ctx, "operator password not match", "client", in.ClientID, "remaining", res.Remaining)

		ev := entity.SecurityEvent{Type: entity.EventLoginFailed, Client: in.ClientID, Remaining: res.Remaining}
		s.publish(ctx, ev)

		if res.Remaining == 0 {
			locked := entity.SecurityEvent{Type: entity.EventLoginLocked, Client: in.ClientID, RetryAfter: res.RetryAfter()}
			slog.WarnContext(ctx, "login locked for client", "client", in.ClientID, "retry_after", locked.RetryAfter)
			s.publish(ctx, locked)
			s.alertLockout(ctx, locked)
		}

		return nil, goerror.NewAuthorization("Invalid password")
	}

	if err := s.limiter.Reset(ctx, limitKey); err != nil {
		slog.WarnContext(ctx, "failed to reset login rate limit", "client", in.ClientID, "error", err)
	}

	key, err := s.credential.SigningKey(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load signing key", "error", err)
		return nil, err
	}

	sess, err := s.issue(key, jwt.ReasonLogin, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue login session", "error", err)
		return nil, goerror.NewServer(err)
	}

	s.publish(ctx, entity.SecurityEvent{Type: entity.EventLoginSucceeded, Client: in.ClientID})

	return sess, nil
}

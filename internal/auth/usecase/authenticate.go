package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/jwt"
)

// Authenticate verifies token for the router. A token inside the refresh
// threshold is re-issued and returned as renewed; the original stays valid.
func (s *Usecase) Authenticate(ctx context.Context, token string) (*jwt.Claims, string, error) {
	ctx, span := s.startSpan(ctx, "Authenticate")
	defer span.End()

	key, err := s.signingKey(ctx)
	if err != nil {
		return nil, "", err
	}

	info, ok := s.session.VerifyWithRefreshInfo(token, key)
	if !ok {
		slog.WarnContext(ctx, "session token rejected")
		return nil, "", goerror.NewAuthentication("Session is invalid or expired")
	}

	if !info.NeedsRefresh {
		return info.Claims, "", nil
	}

	renewed, err := s.session.Refresh(token, key)
	if err != nil {
		slog.WarnContext(ctx, "failed to silently refresh session", "error", err)
		return info.Claims, "", nil
	}

	slog.InfoContext(ctx, "session silently refreshed", "remaining", info.Remaining.String())

	return info.Claims, renewed, nil
}

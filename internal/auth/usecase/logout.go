package usecase

import (
	"context"
	"log/slog"
)

type LogoutInput struct {
	ClientID string
}

// Logout ends the session on the client side. Tokens are stateless, so
// there is nothing to revoke on the server.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) error {
	_, span := s.startSpan(ctx, "Logout")
	defer span.End()

	slog.InfoContext(ctx, "session logged out", "client", in.ClientID)

	return nil
}

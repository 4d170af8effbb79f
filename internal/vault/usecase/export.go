package usecase

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
)

// Export returns every secret as an otpauth:// URI.
func (s *Usecase) Export(ctx context.Context) ([]string, error) {
	ctx, span := s.startSpan(ctx, "Export")
	defer span.End()

	secrets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "secrets exported", "count", len(secrets))

	return lo.Map(secrets, func(sec entity.Secret, _ int) string {
		return sec.Key().URI()
	}), nil
}

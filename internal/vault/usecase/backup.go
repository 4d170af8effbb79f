package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/seedvault/internal/pkg/envelope"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/storage"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
)

const (
	backupPrefix     = "backups/"
	backupTimeFormat = "20060102T150405Z"
)

// storageErr classifies object storage failures.
func storageErr(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrDisabled):
		slog.WarnContext(ctx, "backup storage is disabled", "op", op)
		return goerror.NewConfiguration("Backup storage is not configured", err)
	case errors.Is(err, storage.ErrObjectNotFound):
		return goerror.NewNotFound("Backup not found")
	default:
		slog.ErrorContext(ctx, "backup storage failure", "op", op, "error", err)
		return goerror.NewServer(err)
	}
}

// Backup uploads the stored envelope as is. Only encrypted collections are
// uploaded, so a backup never holds plaintext seeds.
func (s *Usecase) Backup(ctx context.Context) (*entity.Backup, error) {
	ctx, span := s.startSpan(ctx, "Backup")
	defer span.End()

	if !s.repoKV.Encrypted() {
		slog.WarnContext(ctx, "backup requested without master key")
		return nil, goerror.NewConfiguration("Master key is not configured", envelope.ErrMissingKey)
	}

	s.mu.Lock()
	raw, err := s.repoKV.LoadRaw(ctx)
	s.mu.Unlock()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load stored secrets", "error", err)
		return nil, goerror.NewServer(err)
	}

	if raw == "" {
		return nil, goerror.NewNotFound("Vault is empty")
	}
	if !envelope.IsEncrypted(raw) {
		slog.WarnContext(ctx, "stored secrets are not encrypted, migration required")
		return nil, goerror.NewConfiguration("Stored secrets are not encrypted, run migrate first", nil)
	}

	secrets, err := s.repoKV.Decode(raw)
	if err != nil {
		slog.ErrorContext(ctx, "stored envelope does not open", "error", err)
		return nil, serverErr(err)
	}

	now := s.now()
	key := fmt.Sprintf("%ssecrets-%s-%d.%s", backupPrefix, now.Format(backupTimeFormat), s.snowflake.Generate(), envelope.Version)
	meta := map[string]string{
		"format":  envelope.Version,
		"secrets": strconv.Itoa(len(secrets)),
	}

	backup, err := s.repoBlob.Upload(ctx, key, []byte(raw), meta)
	if err != nil {
		return nil, storageErr(ctx, "upload", err)
	}

	slog.InfoContext(ctx, "backup uploaded", "key", key, "secrets", len(secrets))

	s.prune(ctx)

	return backup, nil
}

// prune keeps the newest backup.retention backups. Failures are logged only.
func (s *Usecase) prune(ctx context.Context) {
	keep := s.cfg.GetInt("backup.retention")
	if keep <= 0 {
		keep = defaultRetention
	}

	backups, err := s.repoBlob.List(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to list backups for retention", "error", err)
		return
	}

	for _, b := range lo.Drop(backups, keep) {
		if err := s.repoBlob.Delete(ctx, b.Key); err != nil {
			slog.WarnContext(ctx, "failed to delete old backup", "key", b.Key, "error", err)
			continue
		}
		slog.InfoContext(ctx, "old backup deleted", "key", b.Key)
	}
}

// ListBackups returns the uploaded backups, newest first.
func (s *Usecase) ListBackups(ctx context.Context) ([]entity.Backup, error) {
	ctx, span := s.startSpan(ctx, "ListBackups")
	defer span.End()

	backups, err := s.repoBlob.List(ctx)
	if err != nil {
		return nil, storageErr(ctx, "list", err)
	}

	return backups, nil
}

type RestoreInput struct {
	Key string `validate:"required,max=512"`
}

// Restore replaces the collection with the content of a backup. The backup
// must open under the configured master key.
func (s *Usecase) Restore(ctx context.Context, in RestoreInput) (int, error) {
	ctx, span := s.startSpan(ctx, "Restore")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return 0, goerror.NewInvalidInput(err)
	}
	if !strings.HasPrefix(in.Key, backupPrefix) || strings.Contains(in.Key, "..") {
		return 0, goerror.NewValidation("Validation error", "key", "key is not a backup")
	}
	if !s.repoKV.Encrypted() {
		return 0, goerror.NewConfiguration("Master key is not configured", envelope.ErrMissingKey)
	}

	data, err := s.repoBlob.Download(ctx, in.Key)
	if err != nil {
		return 0, storageErr(ctx, "download", err)
	}

	raw := string(data)
	if !envelope.IsEncrypted(raw) {
		slog.WarnContext(ctx, "backup is not an envelope", "key", in.Key)
		return 0, goerror.NewValidation("Backup is not encrypted")
	}

	secrets, err := s.repoKV.Decode(raw)
	if err != nil {
		slog.WarnContext(ctx, "backup does not open under the current key", "key", in.Key, "error", err)
		return 0, serverErr(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, secrets); err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "backup restored", "key", in.Key, "secrets", len(secrets))

	return len(secrets), nil
}

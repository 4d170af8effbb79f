package usecase

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/otp"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
)

const maxImportItems = 10_000

// ImportEntry is a raw seed, as found in authenticator exports that do not
// produce otpauth:// URIs.
type ImportEntry struct {
	Issuer   string                `validate:"max=128"`
	Account  string                `validate:"required,max=256"`
	Secret   string                `validate:"required,max=512"`
	Encoding entity.SecretEncoding `validate:"omitempty,oneof=base32 base64"`
}

type ImportInput struct {
	URIs    []string      `validate:"max=10000"`
	Entries []ImportEntry `validate:"max=10000,dive"`
}

// Import adds every valid item that is not already stored. Items are indexed
// URIs first, then entries. Invalid items are reported and skipped.
func (s *Usecase) Import(ctx context.Context, in ImportInput) (*entity.ImportResult, error) {
	ctx, span := s.startSpan(ctx, "Import")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	total := len(in.URIs) + len(in.Entries)
	if total == 0 {
		return nil, goerror.NewValidation("Nothing to import")
	}
	if total > maxImportItems {
		return nil, goerror.NewValidation("Too many items to import")
	}

	keys := make([]otp.Key, 0, total)
	result := &entity.ImportResult{}
	fail := func(i int, err error) {
		result.Failures = append(result.Failures, entity.ImportFailure{Index: i, Reason: err.Error()})
	}

	for i, raw := range in.URIs {
		k, err := otp.ParseURI(raw)
		if err != nil {
			fail(i, err)
			continue
		}
		keys = append(keys, k)
	}

	for j, e := range in.Entries {
		i := len(in.URIs) + j
		k, err := entryKey(e)
		if err != nil {
			fail(i, err)
			continue
		}
		keys = append(keys, k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, k := range keys {
		sec := entity.FromKey(s.snowflake.Generate(), k, now)
		if slices.ContainsFunc(secrets, sec.SameSeed) {
			result.Skipped++
			continue
		}
		secrets = append(secrets, sec)
		result.Imported = append(result.Imported, sec)
	}

	if len(result.Imported) > 0 {
		if err := s.save(ctx, secrets); err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "secrets imported",
		"imported", len(result.Imported),
		"skipped", result.Skipped,
		"failed", len(result.Failures),
	)

	return result, nil
}

func entryKey(e ImportEntry) (otp.Key, error) {
	secret := e.Secret
	if e.Encoding == entity.SecretEncodingBase64 {
		converted, err := otp.Base64ToBase32(secret)
		if err != nil {
			return otp.Key{}, err
		}
		secret = converted
	}

	return otp.Key{
		Type:    otp.TypeTOTP,
		Issuer:  e.Issuer,
		Account: e.Account,
		Secret:  secret,
	}.Normalize()
}

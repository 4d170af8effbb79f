package inbound

import (
	"strconv"

	"github.com/samber/lo"
	"github.com/shandysiswandi/seedvault/internal/pkg/router"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
	"github.com/shandysiswandi/seedvault/internal/vault/usecase"
)

// HTTPEndpoint exposes the secret collection over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// IDs are rendered as strings so snowflakes survive JavaScript clients.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (h *HTTPEndpoint) List(r *router.Request) (any, error) {
	secrets, err := h.uc.List(r.Context(), usecase.ListInput{Search: r.GetQuery("search")})
	if err != nil {
		return nil, err
	}

	return ListResponse{Secrets: lo.Map(secrets, func(sec entity.Secret, _ int) SecretResponse {
		return toSecretResponse(sec)
	})}, nil
}

func (h *HTTPEndpoint) Get(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	sec, err := h.uc.Get(r.Context(), usecase.GetInput{ID: id})
	if err != nil {
		return nil, err
	}

	return toSecretResponse(*sec), nil
}

func (h *HTTPEndpoint) Create(r *router.Request) (any, error) {
	var req CreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	sec, err := h.uc.Create(r.Context(), usecase.CreateInput{
		Issuer:    req.Issuer,
		Account:   req.Account,
		Seed:      req.Seed,
		Type:      req.Type,
		Algorithm: req.Algorithm,
		Digits:    req.Digits,
		Period:    req.Period,
		Counter:   req.Counter,
	})
	if err != nil {
		return nil, err
	}

	return CreatedResponse{SecretResponse: toSecretResponse(*sec)}, nil
}

func (h *HTTPEndpoint) Update(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req UpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	sec, err := h.uc.Update(r.Context(), usecase.UpdateInput{
		ID:      id,
		Issuer:  req.Issuer,
		Account: req.Account,
		Counter: req.Counter,
	})
	if err != nil {
		return nil, err
	}

	return toSecretResponse(*sec), nil
}

func (h *HTTPEndpoint) Delete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.Delete(r.Context(), usecase.DeleteInput{ID: id}); err != nil {
		return nil, err
	}

	return DeletedResponse{}, nil
}

func (h *HTTPEndpoint) Code(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	code, err := h.uc.Code(r.Context(), usecase.CodeInput{ID: id})
	if err != nil {
		return nil, err
	}

	return CodeResponse{Code: code.Code, Remaining: code.Remaining, Counter: code.Counter}, nil
}

func (h *HTTPEndpoint) Export(r *router.Request) (any, error) {
	uris, err := h.uc.Export(r.Context())
	if err != nil {
		return nil, err
	}

	return ExportResponse{URIs: uris}, nil
}

func (h *HTTPEndpoint) Import(r *router.Request) (any, error) {
	var req ImportRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return h.doImport(r, usecase.ImportInput{
		URIs:    req.URIs,
		Entries: lo.Map(req.Entries, func(e ImportEntryRequest, _ int) usecase.ImportEntry {
			return usecase.ImportEntry{
				Issuer:   e.Issuer,
				Account:  e.Account,
				Secret:   e.Secret,
				Encoding: entity.SecretEncoding(e.Encoding),
			}
		}),
	})
}

// ImportFile reads one otpauth:// URI per line from the multipart field "file".
func (h *HTTPEndpoint) ImportFile(r *router.Request) (any, error) {
	file, err := r.StreamSingleFile("file")
	if err != nil {
		return nil, err
	}

	lines, err := router.ReadLines(file)
	if err != nil {
		return nil, err
	}

	return h.doImport(r, usecase.ImportInput{URIs: lines})
}

func (h *HTTPEndpoint) doImport(r *router.Request, in usecase.ImportInput) (any, error) {
	res, err := h.uc.Import(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return ImportResponse{
		Imported: lo.Map(res.Imported, func(sec entity.Secret, _ int) SecretResponse {
			return toSecretResponse(sec)
		}),
		Skipped:  res.Skipped,
		Failures: res.Failures,
	}, nil
}

func (h *HTTPEndpoint) Backup(r *router.Request) (any, error) {
	b, err := h.uc.Backup(r.Context())
	if err != nil {
		return nil, err
	}

	return BackupResponse{Backup: *b}, nil
}

func (h *HTTPEndpoint) ListBackups(r *router.Request) (any, error) {
	backups, err := h.uc.ListBackups(r.Context())
	if err != nil {
		return nil, err
	}

	return BackupListResponse{Backups: backups}, nil
}

func (h *HTTPEndpoint) Restore(r *router.Request) (any, error) {
	var req RestoreRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	n, err := h.uc.Restore(r.Context(), usecase.RestoreInput{Key: req.Key})
	if err != nil {
		return nil, err
	}

	return RestoreResponse{Count: n}, nil
}

func (h *HTTPEndpoint) Migrate(r *router.Request) (any, error) {
	res, err := h.uc.Migrate(r.Context())
	if err != nil {
		return nil, err
	}

	return MigrateResponse{Migrated: res.Migrated, Count: res.Count}, nil
}

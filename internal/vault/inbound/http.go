package inbound

import (
	"context"

	"github.com/shandysiswandi/seedvault/internal/pkg/router"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
	"github.com/shandysiswandi/seedvault/internal/vault/usecase"
)

type uc interface {
	List(ctx context.Context, in usecase.ListInput) ([]entity.Secret, error)
	Get(ctx context.Context, in usecase.GetInput) (*entity.Secret, error)
	Create(ctx context.Context, in usecase.CreateInput) (*entity.Secret, error)
	Update(ctx context.Context, in usecase.UpdateInput) (*entity.Secret, error)
	Delete(ctx context.Context, in usecase.DeleteInput) error
	Code(ctx context.Context, in usecase.CodeInput) (*entity.Code, error)
	Export(ctx context.Context) ([]string, error)
	Import(ctx context.Context, in usecase.ImportInput) (*entity.ImportResult, error)
	Backup(ctx context.Context) (*entity.Backup, error)
	ListBackups(ctx context.Context) ([]entity.Backup, error)
	Restore(ctx context.Context, in usecase.RestoreInput) (int, error)
	Migrate(ctx context.Context) (*entity.MigrateResult, error)
}

// Guards are the middlewares placed in front of vault routes. Bulk applies
// on top of API and Auth for import, export and backup routes.
type Guards struct {
	Auth router.Middleware
	API  router.Middleware
	Bulk router.Middleware
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, g Guards) {
	end := &HTTPEndpoint{uc: uc}

	std := []router.Middleware{g.API, g.Auth}
	bulk := []router.Middleware{g.API, g.Bulk, g.Auth}

	r.GET("/api/v1/vault/secrets", end.List, std...)
	r.POST("/api/v1/vault/secrets", end.Create, std...)
	r.GET("/api/v1/vault/secrets/:id", end.Get, std...)
	r.PUT("/api/v1/vault/secrets/:id", end.Update, std...)
	r.DELETE("/api/v1/vault/secrets/:id", end.Delete, std...)
	r.GET("/api/v1/vault/secrets/:id/code", end.Code, std...)

	r.GET("/api/v1/vault/export", end.Export, bulk...)
	r.POST("/api/v1/vault/import", end.Import, bulk...)
	r.POST("/api/v1/vault/import/file", end.ImportFile, bulk...)

	r.GET("/api/v1/vault/backups", end.ListBackups, std...)
	r.POST("/api/v1/vault/backups", end.Backup, bulk...)
	r.POST("/api/v1/vault/backups/restore", end.Restore, bulk...)
	r.POST("/api/v1/vault/migrate", end.Migrate, bulk...)
}

package inbound

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/seedvault/internal/auth/entity"
	"github.com/shandysiswandi/seedvault/internal/auth/usecase"
	"github.com/shandysiswandi/seedvault/internal/pkg/router"
)

type uc interface {
	Status(ctx context.Context) (*entity.Status, error)
	Setup(ctx context.Context, in usecase.SetupInput) (*entity.Session, error)
	Login(ctx context.Context, in usecase.LoginInput) (*entity.Session, error)
	Refresh(ctx context.Context, in usecase.RefreshInput) (*entity.Session, error)
	Logout(ctx context.Context, in usecase.LogoutInput) error
}

type sessionTransport interface {
	FromRequest(r *http.Request) string
	SessionCookie(token string) *http.Cookie
	ExpiredSessionCookie() *http.Cookie
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, transport sessionTransport) {
	end := &HTTPEndpoint{uc: uc, transport: transport}

	r.GET("/api/v1/auth/status", end.Status)
	r.POST("/api/v1/auth/setup", end.Setup)
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/refresh", end.Refresh)
	r.POST("/api/v1/auth/logout", end.Logout)
}

package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/seedvault/internal/auth/entity"
	"github.com/shandysiswandi/seedvault/internal/auth/usecase"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/jwt"
	"github.com/shandysiswandi/seedvault/internal/pkg/router"
	"github.com/shandysiswandi/seedvault/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUC struct {
	gotSetup   usecase.SetupInput
	gotLogin   usecase.LoginInput
	gotRefresh usecase.RefreshInput
	loginErr   error
}

var testExpiry = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func (f *fakeUC) Status(context.Context) (*entity.Status, error) {
	return &entity.Status{SetupCompleted: true}, nil
}

func (f *fakeUC) Setup(_ context.Context, in usecase.SetupInput) (*entity.Session, error) {
	f.gotSetup = in
	return &entity.Session{Token: "setup-token", Reason: jwt.ReasonSetup, ExpiresAt: testExpiry}, nil
}

func (f *fakeUC) Login(_ context.Context, in usecase.LoginInput) (*entity.Session, error) {
	f.gotLogin = in
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &entity.Session{Token: "login-token", Reason: jwt.ReasonLogin, ExpiresAt: testExpiry}, nil
}

func (f *fakeUC) Refresh(_ context.Context, in usecase.RefreshInput) (*entity.Session, error) {
	f.gotRefresh = in
	return &entity.Session{Token: "refreshed-token", Reason: jwt.ReasonRefresh, ExpiresAt: testExpiry}, nil
}

func (f *fakeUC) Logout(context.Context, usecase.LogoutInput) error { return nil }

func setup(t *testing.T) (*router.Router, *fakeUC) {
	t.Helper()
	r := router.NewRouter(router.Config{UUID: uid.NewUUID(), Instrument: instrument.NewNoop()})
	uc := &fakeUC{}
	RegisterHTTPEndpoint(r, uc, jwt.New(jwt.Config{CookieSecure: true}))
	return r, uc
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHTTPEndpoint_Status(t *testing.T) {
	t.Parallel()

	r, _ := setup(t)
	rec, body := do(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/auth/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"setup_completed": true, "encryption_enabled": false}, body["data"])
}

func TestHTTPEndpoint_LoginSetsCookie(t *testing.T) {
	t.Parallel()

	r, uc := setup(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"Vault#2024pass"}`))
	req.Header.Set("X-Real-IP", "198.51.100.4")

	rec, body := do(t, r, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "login-token", data["token"])
	assert.Equal(t, jwt.ReasonLogin, data["reason"])

	cookie := rec.Result().Cookies()
	require.Len(t, cookie, 1)
	assert.Equal(t, jwt.DefaultCookieName, cookie[0].Name)
	assert.Equal(t, "login-token", cookie[0].Value)
	assert.True(t, cookie[0].HttpOnly)
	assert.True(t, cookie[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie[0].SameSite)

	assert.Equal(t, "198.51.100.4", uc.gotLogin.ClientID)
	assert.Equal(t, "Vault#2024pass", uc.gotLogin.Password)
}

func TestHTTPEndpoint_LoginRateLimited(t *testing.T) {
	t.Parallel()

	r, uc := setup(t)
	uc.loginErr = goerror.NewTooManyRequests("Too many login attempts, try again later", 55)

	rec, body := do(t, r, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"x"}`)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "55", rec.Header().Get("Retry-After"))
	assert.Equal(t, goerror.KindTooManyRequests.String(), body["title"])
}

func TestHTTPEndpoint_SetupRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	r, _ := setup(t)
	rec, _ := do(t, r, httptest.NewRequest(http.MethodPost, "/api/v1/auth/setup", strings.NewReader(`{"password":"x","admin":true}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPEndpoint_RefreshReadsBearer(t *testing.T) {
	t.Parallel()

	r, uc := setup(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer old-token")

	rec, body := do(t, r, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "old-token", uc.gotRefresh.Token)
	assert.Equal(t, "refreshed-token", body["data"].(map[string]any)["token"])
}

func TestHTTPEndpoint_LogoutExpiresCookie(t *testing.T) {
	t.Parallel()

	r, _ := setup(t)
	rec, body := do(t, r, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out", body["message"])

	cookie := rec.Result().Cookies()
	require.Len(t, cookie, 1)
	assert.Equal(t, -1, cookie[0].MaxAge)
	assert.Empty(t, cookie[0].Value)
}

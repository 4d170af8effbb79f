package inbound

import (
	"github.com/shandysiswandi/seedvault/internal/auth/entity"
	"github.com/shandysiswandi/seedvault/internal/auth/usecase"
	"github.com/shandysiswandi/seedvault/internal/pkg/router"
)

// HTTPEndpoint exposes the setup and session lifecycle over HTTP.
type HTTPEndpoint struct {
	uc        uc
	transport sessionTransport
}

// Status reports whether setup is done and whether stored data is encrypted.
func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	st, err := h.uc.Status(r.Context())
	if err != nil {
		return nil, err
	}

	return StatusResponse{
		SetupCompleted:    st.SetupCompleted,
		EncryptionEnabled: st.EncryptionEnabled,
	}, nil
}

// Setup stores the operator password once and opens the first session.
func (h *HTTPEndpoint) Setup(r *router.Request) (any, error) {
	var req PasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	sess, err := h.uc.Setup(r.Context(), usecase.SetupInput{
		Password: req.Password,
		ClientID: r.ClientIdentity(),
	})
	if err != nil {
		return nil, err
	}

	return h.session(sess, "Setup completed"), nil
}

// Login exchanges the operator password for a session.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req PasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	sess, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Password: req.Password,
		ClientID: r.ClientIdentity(),
	})
	if err != nil {
		return nil, err
	}

	return h.session(sess, "Login successful"), nil
}

// Refresh re-issues the presented session token without a password.
func (h *HTTPEndpoint) Refresh(r *router.Request) (any, error) {
	sess, err := h.uc.Refresh(r.Context(), usecase.RefreshInput{
		Token: h.transport.FromRequest(r.Request),
	})
	if err != nil {
		return nil, err
	}

	return h.session(sess, "Session refreshed"), nil
}

// Logout expires the session cookie.
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{ClientID: r.ClientIdentity()}); err != nil {
		return nil, err
	}

	return LogoutResponse{cookie: h.transport.ExpiredSessionCookie()}, nil
}

func (h *HTTPEndpoint) session(sess *entity.Session, msg string) SessionResponse {
	return SessionResponse{
		Token:     sess.Token,
		Reason:    sess.Reason,
		ExpiresAt: sess.ExpiresAt,
		cookie:    h.transport.SessionCookie(sess.Token),
		message:   msg,
	}
}

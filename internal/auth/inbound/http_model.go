package inbound

import (
	"net/http"
	"time"
)

type StatusResponse struct {
	SetupCompleted    bool `json:"setup_completed"`
	EncryptionEnabled bool `json:"encryption_enabled"`
}

type PasswordRequest struct {
	Password string `json:"password"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	Reason    string    `json:"reason"`
	ExpiresAt time.Time `json:"expires_at"`

	cookie  *http.Cookie
	message string
}

func (r SessionResponse) Message() string { return r.message }

func (r SessionResponse) Cookies() []*http.Cookie { return []*http.Cookie{r.cookie} }

type LogoutResponse struct {
	cookie *http.Cookie
}

func (LogoutResponse) Message() string { return "Logged out" }

func (r LogoutResponse) Cookies() []*http.Cookie { return []*http.Cookie{r.cookie} }

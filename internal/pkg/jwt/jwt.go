package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrEmptySigningKey is returned when a token is issued without key material.
	ErrEmptySigningKey = errors.New("empty signing key")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

const (
	// DefaultTTL is the lifetime of a freshly issued token.
	DefaultTTL = 30 * 24 * time.Hour
	// DefaultRefreshThreshold is the remaining lifetime below which a token is re-issued.
	DefaultRefreshThreshold = 7 * 24 * time.Hour
	// DefaultCookieName is the name of the session cookie.
	DefaultCookieName = "seedvault_session"
	// DefaultIssuer is the iss claim of every token.
	DefaultIssuer = "seedvault"

	subject = "operator"
)

// Reasons recorded in the token payload.
const (
	ReasonSetup   = "setup"
	ReasonLogin   = "login"
	ReasonRefresh = "refresh"
)

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config defines the inputs for building a Service.
type Config struct {
	// Issuer is the token issuer value.
	Issuer string
	// TTL is the token time-to-live.
	TTL time.Duration
	// RefreshThreshold marks a valid token as due for silent refresh.
	RefreshThreshold time.Duration
	// CookieName is the session cookie name.
	CookieName string
	// CookieSecure sets the Secure attribute on the session cookie.
	CookieSecure bool
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Claims is the session token payload.
type Claims struct {
	// RegisteredClaims holds the standard JWT claims.
	jwt.RegisteredClaims
	// Reason is why the token was issued (setup, login or refresh).
	Reason string `json:"reason,omitempty"`
	// LoginAt is the unix time of the password login the session descends from.
	LoginAt int64 `json:"login_at,omitempty"`
}

// RefreshInfo is the result of VerifyWithRefreshInfo.
type RefreshInfo struct {
	Claims       *Claims
	Remaining    time.Duration
	NeedsRefresh bool
}

// GetAuth returns the JWT claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores JWT claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}

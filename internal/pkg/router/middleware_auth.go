package router

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/jwt"
)

// HeaderSessionToken carries a silently renewed session token.
const HeaderSessionToken = "X-Session-Token"

// Authenticator resolves a session token into claims. A non-empty renewed
// token supersedes the presented one.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (claims *jwt.Claims, renewed string, err error)
}

// SessionTransport reads session tokens from requests and writes them back as
// cookies.
type SessionTransport interface {
	FromRequest(r *http.Request) string
	SessionCookie(token string) *http.Cookie
}

// Authentication returns a middleware that rejects requests without a valid
// session token. When the token is close to expiry the replacement is sent
// back both as a cookie and in HeaderSessionToken.
func (r *Router) Authentication(auth Authenticator, transport SessionTransport) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token := transport.FromRequest(req)
			if token == "" {
				r.errorCodec(req.Context(), w, goerror.NewAuthentication("Authentication required"))
				return
			}

			claims, renewed, err := auth.Authenticate(req.Context(), token)
			if err != nil {
				r.errorCodec(req.Context(), w, err)
				return
			}

			if renewed != "" {
				http.SetCookie(w, transport.SessionCookie(renewed))
				w.Header().Set(HeaderSessionToken, renewed)
			}

			next.ServeHTTP(w, req.WithContext(jwt.SetAuth(req.Context(), *claims)))
		})
	}
}

package jwt

import (
	"net/http"
	"strings"
)

const bearerPrefix = "bearer "

// CookieName returns the session cookie name.
func (s *Service) CookieName() string {
	return s.cookieName
}

// FromRequest returns the session token carried by r. An Authorization
// bearer header wins over the session cookie. Empty means no token.
func (s *Service) FromRequest(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); len(h) > len(bearerPrefix) &&
		strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}

	if c, err := r.Cookie(s.cookieName); err == nil {
		return c.Value
	}

	return ""
}

// SessionCookie builds the cookie that carries token to the browser.
func (s *Service) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ExpiredSessionCookie builds a cookie that removes the session from the browser.
func (s *Service) ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

package router

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the identity used when no address can be determined.
const UnknownClient = "unknown"

type clientKey struct{}

// clientHeaders are consulted in order before the connection address.
var clientHeaders = []string{
	"CF-Connecting-IP",
	"True-Client-IP",
	"X-Real-IP",
	"X-Forwarded-For",
}

func middlewareClientIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientKey{}, clientIdentity(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIdentity returns the client identity resolved for the request, or
// UnknownClient.
func ClientIdentity(ctx context.Context) string {
	if v, ok := ctx.Value(clientKey{}).(string); ok && v != "" {
		return v
	}
	return UnknownClient
}

func clientIdentity(r *http.Request) string {
	for _, h := range clientHeaders {
		v := r.Header.Get(h)
		if h == "X-Forwarded-For" {
			v, _, _ = strings.Cut(v, ",")
		}
		if ip := net.ParseIP(strings.TrimSpace(v)); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip.String()
		}
	}

	return UnknownClient
}

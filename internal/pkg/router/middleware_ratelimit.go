package router

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/ratelimit"
)

// Limiter is the subset of ratelimit.Limiter used by the router.
type Limiter interface {
	Check(ctx context.Context, key string, p ratelimit.Policy) ratelimit.Result
}

// RateLimit returns a middleware that checks the client identity against p
// under "<p.Name>:<client>" and answers 429 with Retry-After when denied.
func (r *Router) RateLimit(l Limiter, p ratelimit.Policy) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			res := l.Check(req.Context(), p.Name+":"+ClientIdentity(req.Context()), p)
			SetRateLimitHeaders(w.Header(), res)

			if !res.Allowed {
				r.errorCodec(req.Context(), w, goerror.NewTooManyRequests("Too many requests, try again later", res.RetryAfter()))
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}

// SetRateLimitHeaders writes the X-RateLimit-* headers for res.
func SetRateLimitHeaders(h http.Header, res ratelimit.Result) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

// Package requesttime pins a single "now" per HTTP request.
// Every rule evaluated for the request (vehicle age in particular) sees the
// same timestamp, and tests can inject a fixed one.
package requesttime

import (
	"net/http"
	"time"

	"riskprofile/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and stores
// it in the context. A time already present in the context is kept.
func Middleware(next http.Handler) http.Handler {
	return MiddlewareWithClock(time.Now)(next)
}

// MiddlewareWithClock is Middleware with an injectable clock.
func MiddlewareWithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := ctx.Value(requestcontext.ContextKeyRequestTime).(time.Time); !ok {
				ctx = requestcontext.WithTime(ctx, clock())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package httpx

import (
	"net/http"
	"runtime/debug"

	"github.com/inkwell-app/inkwell/pkg/slogx"
)

// Recover converts handler panics into a 500 response instead of tearing
// down the connection. The panic value and stack are logged, never exposed.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slogx.FromContext(r.Context()).Error("panic serving request",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					Error(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

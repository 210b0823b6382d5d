package middleware

import (
	"net/http"
	"time"

	"github.com/frahmantamala/personal-ledger/internal"
)

// RequestTimeout bounds the request context; store calls made with it are
// cancelled once d elapses.
func RequestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := internal.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

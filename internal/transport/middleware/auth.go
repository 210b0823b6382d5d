package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/pkg/logger"
)

type TokenValidator interface {
	ValidateAccessToken(tokenString string) (string, error)
}

// RequireOwner rejects requests without a valid owner bearer token and
// stores the owner on the request context.
func RequireOwner(validator TokenValidator, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w, internal.ErrInvalidToken)
				return
			}

			owner, err := validator.ValidateAccessToken(token)
			if err != nil {
				lg.Warn("rejected access token", "error", err, "path", r.URL.Path)
				writeUnauthorized(w, err)
				return
			}

			ctx := internal.ContextWithOwner(r.Context(), owner)
			ctx = logger.With(ctx, "owner", owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.ErrInvalidToken
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(internal.Response{Error: appErr})
}

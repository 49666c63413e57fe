package middleware

import (
	"net/http"

	errors "github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/pkg/logger"
)

// AccountContext tags the request logger with the authenticated account.
// It must run after the auth middleware.
func AccountContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := errors.AccountIDFromContext(r.Context())
		if accountID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "account_id", accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

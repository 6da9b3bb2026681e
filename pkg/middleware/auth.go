package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/user"
	"github.com/vantagecrm/vantage/pkg/composables"
)

// ProvideUser maps gateway identity headers to the request user. Session and
// cookie handling are done upstream; this service only sees the result.
func ProvideUser() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := strings.TrimSpace(r.Header.Get("X-User-Email"))
			role := strings.TrimSpace(r.Header.Get("X-User-Role"))
			if email == "" || role == "" {
				next.ServeHTTP(w, r)
				return
			}
			id := uuid.Nil
			if v := strings.TrimSpace(r.Header.Get("X-User-Id")); v != "" {
				if parsed, err := uuid.Parse(v); err == nil {
					id = parsed
				}
			}
			ctx := composables.WithUser(r.Context(), user.User{
				ID:    id,
				Email: email,
				Role:  user.Role(role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests with no resolved user.
func RequireUser() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := composables.UseUser(r.Context()); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/pkg/constants"
)

// Provide stores value under key in every request context.
func Provide(key constants.ContextKey, value any) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), key, value)))
		})
	}
}

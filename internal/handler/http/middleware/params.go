package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/response"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

// UUIDParam rejects requests whose URL parameter is not a record ID, so
// malformed IDs never reach the database.
func UUIDParam(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !validator.IsValidUUID(chi.URLParam(r, key)) {
				response.NotFound(w, "Resource not found")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowHeaders = "Content-Type,Authorization"
)

// CORS stamps the fixed allow headers on every response and answers any
// OPTIONS request with an empty 200 before routing or authentication runs.
// Other cross-origin requests go through rs/cors for Vary and exposed headers.
func CORS() func(http.Handler) http.Handler {
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{corsAllowOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         3600,
	})

	return func(next http.Handler) http.Handler {
		actual := handler.Handler(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := w.Header()
			header.Set("Access-Control-Allow-Origin", corsAllowOrigin)
			header.Set("Access-Control-Allow-Methods", corsAllowMethods)
			header.Set("Access-Control-Allow-Headers", corsAllowHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			actual.ServeHTTP(w, r)
		})
	}
}

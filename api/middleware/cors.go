package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS applies the configured origin policy for browser clients running on a
// separate origin. Credentials are allowed so the session cookies flow.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", IdempotencyHeader, requestIDHeader, "X-Requested-With"},
		ExposedHeaders:   []string{"Location", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

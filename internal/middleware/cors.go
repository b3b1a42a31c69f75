package middleware

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/taskly/dashboard/internal/request"
	"go.uber.org/zap"
)

// DefaultCORSMaxAge caches preflight responses for a day
const DefaultCORSMaxAge = 86400

// CORS answers preflight requests and sets CORS headers for the dashboard
// front-end origins. With no origins, http://localhost:3000 is allowed.
func CORS(allowedOrigins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	if logger != nil {
		logger.Info("cors_configured", zap.Strings("allowed_origins", allowedOrigins))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", request.RequestIDHeader},
		ExposedHeaders: []string{request.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         DefaultCORSMaxAge,
	})
	return c.Handler
}

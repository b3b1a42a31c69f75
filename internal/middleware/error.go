package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/taskly/dashboard/internal/logger"
	"github.com/taskly/dashboard/internal/request"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body middleware writes when it rejects or fails a request
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler recovers panics and answers with a JSON 500. It must run
// inside RequestID for the response to carry the request's ID.
func ErrorHandler(zapLogger *zap.Logger) func(http.Handler) http.Handler {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// The server relies on this sentinel to abort the response silently
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				zapLogger.Error("panic_recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", logger.SanitizePath(r.URL.Path)),
					zap.String("request_id", request.RequestID(r.Context())),
					zap.StackSkip("stack", 2),
				)
				respondErrorJSON(w, r, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred", zapLogger)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// respondErrorJSON writes an ErrorResponse. Encoding failures are logged when
// zapLogger is set.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, status int, errorType, message string, zapLogger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := ErrorResponse{
		Error:     errorType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      logger.SanitizePath(r.URL.Path),
		RequestID: request.RequestID(r.Context()),
	}
	if err := json.NewEncoder(w).Encode(body); err != nil && zapLogger != nil {
		zapLogger.Error("failed_to_encode_error_response",
			zap.Int("status_code", status),
			zap.Error(err),
		)
	}
}

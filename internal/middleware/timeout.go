package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/taskly/dashboard/internal/logger"
	"github.com/taskly/dashboard/internal/request"
)

const fallbackTimeoutBody = `{"success":false,"error":"Service Unavailable","message":"Request timed out"}`

// Timeout cancels the request context after timeout and answers 503 with the
// JSON error envelope if the handler has not written yet.
//
// http.TimeoutHandler writes its body without a Content-Type, so the header is
// preset on the real writer. Headers set by the handler replace it when the
// handler finishes in time.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.TimeoutHandler(next, timeout, timeoutBody(r)).ServeHTTP(w, r)
		})
	}
}

func timeoutBody(r *http.Request) string {
	body, err := json.Marshal(ErrorResponse{
		Error:     "Service Unavailable",
		Message:   "Request timed out",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      logger.SanitizePath(r.URL.Path),
		RequestID: request.RequestID(r.Context()),
	})
	if err != nil {
		return fallbackTimeoutBody
	}
	return string(body)
}

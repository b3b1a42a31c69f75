package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/taskly/dashboard/internal/request"
)

// maxRequestIDLength bounds client supplied IDs
const maxRequestIDLength = 128

// RequestID propagates the caller's X-Request-ID or assigns a new one, and
// echoes it on the response
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(request.RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(request.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}

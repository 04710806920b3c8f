package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"vehicle/api/internal/httpapi/contextkeys"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, keeping a caller-supplied one when
// it is a well-formed UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), contextkeys.RequestIDKey, requestID)
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

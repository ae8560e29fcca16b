package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Jash-k/MyTVStremioAddon/internal/observability"
)

// RequestIDHeader is the HTTP header for request ID.
const RequestIDHeader = "X-Request-ID"

// RequestID returns a middleware that tags each request with an id, reusing
// an incoming X-Request-ID when present. The id is echoed in the response
// and a logger carrying it is stored in the request context.
func RequestID(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > 128 {
				requestID = uuid.New().String()
			}

			w.Header().Set(RequestIDHeader, requestID)

			ctx := observability.ContextWithRequestID(r.Context(), requestID)
			ctx = observability.ContextWithLogger(ctx, observability.WithRequestID(logger, requestID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

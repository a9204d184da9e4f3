package httpx

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID on both request and response,
// so portal log lines and client reports can be correlated.
const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware tags each request with an ID, honoring one the
// client already supplied, and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ContextWithRequestID(r.Context(), id)))
	})
}

package httpx

import (
	"context"
	"net/http"

	"lodgeportal/internal/entity"
)

type contextKey string

const (
	sessionKey   contextKey = "session"
	requestIDKey contextKey = "requestID"
)

// ContextWithSession returns a new context carrying the authenticated
// user.
func ContextWithSession(ctx context.Context, user entity.User) context.Context {
	return context.WithValue(ctx, sessionKey, user)
}

// SessionFrom retrieves the authenticated user from the request context.
func SessionFrom(r *http.Request) (entity.User, bool) {
	user, ok := r.Context().Value(sessionKey).(entity.User)
	return user, ok
}

// RoleFrom retrieves the viewer role, or "" when unauthenticated.
func RoleFrom(r *http.Request) string {
	user, _ := SessionFrom(r)
	return user.Role
}

// UsernameFrom retrieves the viewer username, or "" when unauthenticated.
func UsernameFrom(r *http.Request) string {
	user, _ := SessionFrom(r)
	return user.Username
}

// ContextWithRequestID returns a new context with the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

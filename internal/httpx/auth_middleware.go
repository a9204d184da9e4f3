package httpx

import (
	"net/http"
	"time"

	"lodgeportal/internal/access"
	"lodgeportal/internal/auth"
	"lodgeportal/internal/entity"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "lodge_session"

// AuthMiddleware authenticates the session cookie and places the user in
// the request context. Requests without a valid cookie get 401.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				JSONErrorWithRequest(r, w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
				return
			}

			claims, err := auth.ParseToken(secret, cookie.Value)
			if err != nil {
				JSONErrorWithRequest(r, w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session", nil)
				return
			}

			ctx := ContextWithSession(r.Context(), claims.User())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a handler on a minimum degree: the viewer's role
// must rank at least as high as role. Runs after AuthMiddleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	required := access.ParseGrade(role)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !access.Visible(RoleFrom(r), required) {
				JSONErrorWithRequest(r, w, http.StatusForbidden, "FORBIDDEN", "Insufficient degree", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetSessionCookie writes the session cookie for user.
func SetSessionCookie(w http.ResponseWriter, secret string, user entity.User, ttl time.Duration) error {
	token, err := auth.GenerateToken(secret, user, ttl)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

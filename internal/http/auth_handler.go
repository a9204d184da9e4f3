package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"lodgeportal/internal/auth"
	"lodgeportal/internal/httpx"
)

type AuthHandler struct {
	creds  *auth.Credentials
	secret string
	ttl    time.Duration
}

func NewAuthHandler(creds *auth.Credentials, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{creds: creds, secret: secret, ttl: ttl}
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates against the credentials file and sets the session
// cookie. The login field accepts the username key or the display name.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if validationErrors := ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationDetails(validationErrors))
		return
	}

	user, ok := h.creds.Authenticate(req.Username, req.Password)
	if !ok {
		httpx.JSONErrorWithRequest(r, w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}

	if err := httpx.SetSessionCookie(w, h.secret, user, h.ttl); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create session", nil)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, user, nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	httpx.ClearSessionCookie(w)
	httpx.JSONSuccessWithRequest(r, w, nil, nil)
}

// Me returns the identity carried by the session cookie.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.SessionFrom(r)
	if !ok {
		httpx.JSONErrorWithRequest(r, w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, user, nil)
}

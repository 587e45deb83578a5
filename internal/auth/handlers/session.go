package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"milty-server/internal/auth"
	"milty-server/internal/shared/cookies"
	"milty-server/internal/shared/errors"
	"milty-server/internal/shared/response"
)

type SessionResponse struct {
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionHandler exchanges an operator token for an HttpOnly cookie so
// browser clients can call admin endpoints, and clears it again on DELETE.
type SessionHandler struct {
	secret  string
	cookies cookies.Options
}

func NewSessionHandler(secret string, opts cookies.Options) *SessionHandler {
	return &SessionHandler{secret: secret, cookies: opts}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.login(w, r)
	case http.MethodDelete:
		h.logout(w, r)
	default:
		response.Error(w, r, slog.With("handler", "session"), errors.MethodNotAllowed(r.Method))
	}
}

func (h *SessionHandler) login(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "session_login", "remote_addr", r.RemoteAddr)

	if h.secret == "" {
		response.Error(w, r, logger, errors.Unauthorized("authentication is not configured on this server"))
		return
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		response.Error(w, r, logger, errors.Unauthorized("bearer token required"))
		return
	}
	token = strings.TrimSpace(token)

	claims, err := auth.ValidateJWT(h.secret, token)
	if err != nil {
		response.Error(w, r, logger, errors.Unauthorized("invalid token"))
		return
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	cookies.SetAuthCookie(w, h.cookies, token, time.Until(expiresAt))

	logger.Info("Session started", "subject", claims.Subject, "role", claims.Role)
	response.Success(w, http.StatusOK, SessionResponse{
		Subject:   claims.Subject,
		Role:      claims.Role,
		ExpiresAt: expiresAt,
	})
}

func (h *SessionHandler) logout(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "session_logout", "remote_addr", r.RemoteAddr)
	logger.Debug("Logout requested")

	cookies.ClearAuthCookie(w, h.cookies)

	logger.Info("Session cleared")
	response.Success(w, http.StatusNoContent, nil)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"authportal/internal/auth"
	apperrors "authportal/internal/errors"
	"authportal/internal/render"
)

// Headers set by Verify for reverse proxies doing subrequest authentication.
const (
	HeaderAuthEmail    = "X-Auth-Email"
	HeaderAuthUsername = "X-Auth-Username"
	HeaderAuthGroup    = "X-Auth-Group"
)

// SessionHandler serves the pages and endpoints that read the session.
type SessionHandler struct {
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *auth.SessionManager, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{sessions: sessions, logger: logger.With("component", "session_handler")}
}

// VerifyResponse is the body of a successful verification.
type VerifyResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          auth.Identity `json:"user"`
}

// UnauthenticatedResponse is the body of a failed verification.
type UnauthenticatedResponse struct {
	Detail string `json:"detail"`
}

// Dashboard renders the identity attached by the session guard.
func (h *SessionHandler) Dashboard(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return h.RedirectToLogin(c)
	}
	return c.Render(http.StatusOK, render.PageDashboard, echo.Map{
		"username": identity.Username,
		"email":    identity.Email,
		"group":    identity.Group,
	})
}

// RedirectToLogin answers requests for protected pages without a session.
func (h *SessionHandler) RedirectToLogin(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, loginPath)
}

// Logout clears the session and returns to the login page.
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.sessions.Clear(c); err != nil {
		h.logger.WarnContext(c.Request().Context(), "session revocation failed", "error", err)
	}
	return c.Redirect(http.StatusSeeOther, loginPath)
}

// Verify godoc
// @Summary Verify the caller's session
// @Description Returns the identity carried by the session cookie and mirrors it in X-Auth-* headers.
// @Tags auth
// @Produce json
// @Success 200 {object} VerifyResponse
// @Header 200 {string} X-Auth-Email "Authenticated email"
// @Header 200 {string} X-Auth-Username "Local part of the email"
// @Header 200 {string} X-Auth-Group "User group"
// @Failure 401 {object} UnauthenticatedResponse
// @Router /auth/verify [get]
func (h *SessionHandler) Verify(c echo.Context) error {
	identity, ok := h.sessions.CurrentIdentity(c)
	if !ok {
		status := apperrors.MapErrorToHTTP(apperrors.ErrUnauthenticated).StatusCode
		return c.JSON(status, UnauthenticatedResponse{Detail: "Not authenticated"})
	}

	header := c.Response().Header()
	header.Set(HeaderAuthEmail, identity.Email)
	header.Set(HeaderAuthUsername, identity.Username)
	header.Set(HeaderAuthGroup, identity.Group)
	return c.JSON(http.StatusOK, VerifyResponse{Authenticated: true, User: *identity})
}

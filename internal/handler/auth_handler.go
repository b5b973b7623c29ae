package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"authportal/internal/auth"
	apperrors "authportal/internal/errors"
	"authportal/internal/render"
	"authportal/internal/service"
)

const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"

	msgRegistered    = "Registration successful. Please login."
	msgPasswordReset = "Password reset successful. Please login with your new password."
)

// AuthOptions configures the form handlers.
type AuthOptions struct {
	// OrganizationName appears in the wrong-domain message.
	OrganizationName string
	// DefaultRedirect is where a successful login lands without redirect_url.
	DefaultRedirect string
}

// AuthHandler serves the login, registration and forgot-password forms.
type AuthHandler struct {
	authService service.AuthService
	sessions    *auth.SessionManager
	opts        AuthOptions
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, sessions *auth.SessionManager, opts AuthOptions, logger *slog.Logger) *AuthHandler {
	if opts.DefaultRedirect == "" {
		opts.DefaultRedirect = dashboardPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		opts:        opts,
		logger:      logger.With("component", "auth_handler"),
	}
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email       string `form:"email" validate:"required"`
	Password    string `form:"password" validate:"required"`
	RedirectURL string `form:"redirect_url"`
}

// RegisterRequest is the activation form.
type RegisterRequest struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// ForgotPasswordRequest is the password reset form.
type ForgotPasswordRequest struct {
	Email           string `form:"email" validate:"required"`
	NewPassword     string `form:"new_password" validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required"`
}

// LoginPage renders the login form, or sends an authenticated caller to the dashboard.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if _, ok := h.sessions.CurrentIdentity(c); ok {
		return c.Redirect(http.StatusTemporaryRedirect, dashboardPath)
	}
	return c.Render(http.StatusOK, render.PageLogin, echo.Map{
		"message":      c.QueryParam("message"),
		"redirect_url": c.QueryParam("redirect_url"),
	})
}

// Login verifies credentials and issues a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindForm(c, &req); err != nil {
		return err
	}

	identity, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.renderLoginError(c, req.RedirectURL, err)
	}
	if err := h.sessions.Issue(c, *identity); err != nil {
		return h.renderLoginError(c, req.RedirectURL, err)
	}

	target := req.RedirectURL
	if target == "" {
		target = h.opts.DefaultRedirect
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func (h *AuthHandler) renderLoginError(c echo.Context, redirectURL string, err error) error {
	var msg string
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		msg = "Incorrect email or password"
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		h.logger.ErrorContext(c.Request().Context(), "login lookup failed", "error", err)
		msg = "Incorrect email or password"
	default:
		h.logger.ErrorContext(c.Request().Context(), "login error", "error", err)
		msg = "An error occurred during login"
	}
	return c.Render(http.StatusOK, render.PageLogin, echo.Map{
		"error":        msg,
		"redirect_url": redirectURL,
	})
}

// RegisterPage renders the activation form.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, render.PageRegister, echo.Map{})
}

// Register activates a provisioned account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindForm(c, &req); err != nil {
		return err
	}

	err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err == nil {
		return redirectToLogin(c, msgRegistered)
	}

	var msg string
	switch {
	case errors.Is(err, apperrors.ErrInvalidEmailDomain):
		msg = h.domainMessage()
	case errors.Is(err, apperrors.ErrNotAllowedToRegister):
		msg = "User is not allowed to register"
	case errors.Is(err, apperrors.ErrAlreadyRegistered):
		msg = "Email already registered"
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		h.logger.ErrorContext(c.Request().Context(), "registration lookup failed", "error", err)
		msg = "User is not allowed to register"
	case errors.Is(err, apperrors.ErrPasswordUpdateFailed):
		h.logger.ErrorContext(c.Request().Context(), "registration update failed", "error", err)
		msg = "Failed to update user password"
	default:
		h.logger.ErrorContext(c.Request().Context(), "registration error", "error", err)
		msg = "An error occurred during registration"
	}
	return c.Render(http.StatusOK, render.PageRegister, echo.Map{"error": msg})
}

// ForgotPasswordPage renders the reset form.
func (h *AuthHandler) ForgotPasswordPage(c echo.Context) error {
	return c.Render(http.StatusOK, render.PageForgotPassword, echo.Map{
		"message": c.QueryParam("message"),
	})
}

// ForgotPassword replaces the password of an existing account.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindForm(c, &req); err != nil {
		return err
	}

	err := h.authService.ResetPassword(c.Request().Context(), req.Email, req.NewPassword, req.ConfirmPassword)
	if err == nil {
		return redirectToLogin(c, msgPasswordReset)
	}

	var msg string
	switch {
	case errors.Is(err, apperrors.ErrInvalidEmailDomain):
		msg = h.domainMessage()
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		msg = "Passwords do not match"
	case errors.Is(err, apperrors.ErrEmailNotFound):
		msg = "Email not found"
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		h.logger.ErrorContext(c.Request().Context(), "password reset lookup failed", "error", err)
		msg = "Email not found"
	case errors.Is(err, apperrors.ErrPasswordUpdateFailed):
		h.logger.ErrorContext(c.Request().Context(), "password reset update failed", "error", err)
		msg = "Failed to reset password"
	default:
		h.logger.ErrorContext(c.Request().Context(), "password reset error", "error", err)
		msg = "An error occurred. Please try again later."
	}
	return c.Render(http.StatusOK, render.PageForgotPassword, echo.Map{"error": msg})
}

func (h *AuthHandler) domainMessage() string {
	return fmt.Sprintf("Please use your %s email address", h.opts.OrganizationName)
}

func redirectToLogin(c echo.Context, message string) error {
	return c.Redirect(http.StatusSeeOther, loginPath+"?"+url.Values{"message": {message}}.Encode())
}

// bindForm binds and validates a form body. Missing required fields answer 422.
func bindForm(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid form body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, apperrors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
	}
	return nil
}

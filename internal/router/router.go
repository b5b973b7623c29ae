package router

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"authportal/internal/auth"
	"authportal/internal/handler"
	"authportal/internal/logging"
	"authportal/internal/render"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth    *handler.AuthHandler
	Session *handler.SessionHandler
	Health  *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	h Handlers,
	sessions *auth.SessionManager,
	renderer echo.Renderer,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())

	e.Validator = NewValidator()
	e.Renderer = renderer

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/login")
	})
	e.StaticFS("/static", render.Static())

	e.GET("/login", h.Auth.LoginPage)
	e.POST("/login", h.Auth.Login)
	e.GET("/register", h.Auth.RegisterPage)
	e.POST("/register", h.Auth.Register)
	e.GET("/forgot-password", h.Auth.ForgotPasswordPage)
	e.POST("/forgot-password", h.Auth.ForgotPassword)
	e.GET("/logout", h.Session.Logout)

	requireSession := sessions.RequireIdentity(h.Session.RedirectToLogin)
	e.GET("/dashboard", h.Session.Dashboard, requireSession)

	e.GET("/auth/verify", h.Session.Verify)
	e.GET("/health", h.Health.Health)

	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator installed on the router.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

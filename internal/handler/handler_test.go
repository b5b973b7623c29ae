package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"authportal/internal/auth"
	"authportal/internal/render"
	"authportal/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*auth.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	args := m.Called(ctx, email, newPassword, confirmPassword)
	return args.Error(0)
}

type stubHealth struct {
	status service.HealthStatus
}

func (s stubHealth) Check(context.Context) service.HealthStatus {
	return s.status
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (s *memoryRevocations) Revoke(_ context.Context, id string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[id] = true
	return nil
}

func (s *memoryRevocations) IsRevoked(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[id]
}

type formValidator struct {
	validate *validator.Validate
}

func (v formValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type testServer struct {
	e        *echo.Echo
	authSvc  *MockAuthService
	sessions *auth.SessionManager
}

func newTestServer(t *testing.T, health service.HealthStatus) *testServer {
	t.Helper()
	renderer, err := render.New()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	e.Validator = formValidator{validate: validator.New()}

	authSvc := new(MockAuthService)
	sessions := auth.NewSessionManager(auth.SessionOptions{
		CookieName: "user_session",
		Secret:     "test-secret",
		MaxAge:     time.Hour,
	}, &memoryRevocations{revoked: make(map[string]bool)})

	ah := NewAuthHandler(authSvc, sessions, AuthOptions{OrganizationName: "Capgemini"}, nil)
	sh := NewSessionHandler(sessions, nil)
	hh := NewHealthHandler(stubHealth{status: health})

	e.GET("/login", ah.LoginPage)
	e.POST("/login", ah.Login)
	e.GET("/register", ah.RegisterPage)
	e.POST("/register", ah.Register)
	e.GET("/forgot-password", ah.ForgotPasswordPage)
	e.POST("/forgot-password", ah.ForgotPassword)
	e.GET("/logout", sh.Logout)
	e.GET("/dashboard", sh.Dashboard, sessions.RequireIdentity(sh.RedirectToLogin))
	e.GET("/auth/verify", sh.Verify)
	e.GET("/health", hh.Health)

	return &testServer{e: e, authSvc: authSvc, sessions: sessions}
}

func (s *testServer) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// sessionCookie issues a session for identity the way a successful login does.
func (s *testServer) sessionCookie(t *testing.T, identity auth.Identity) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	c := s.e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, s.sessions.Issue(c, identity))
	return findCookie(t, rec, "user_session")
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

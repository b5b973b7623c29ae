package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: make(map[string]time.Duration)}
}

func (s *memoryRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[id] = ttl
	return nil
}

func (s *memoryRevocations) IsRevoked(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}

func newTestManager(revocations RevocationStore) *SessionManager {
	return NewSessionManager(SessionOptions{
		CookieName: "user_session",
		Secret:     "test-secret",
		MaxAge:     time.Hour,
	}, revocations)
}

func newContext(e *echo.Echo, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func issuedCookie(t *testing.T, m *SessionManager, id Identity) *http.Cookie {
	t.Helper()
	e := echo.New()
	c, rec := newContext(e)
	require.NoError(t, m.Issue(c, id))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionManager_IssueThenRead(t *testing.T) {
	m := newTestManager(nil)
	want := NewIdentity("alice@capgemini.com", "genai")

	cookie := issuedCookie(t, m, want)
	assert.Equal(t, "user_session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	c, _ := newContext(echo.New(), cookie)
	got, ok := m.CurrentIdentity(c)
	require.True(t, ok)
	assert.Equal(t, want, *got)
}

func TestSessionManager_AnonymousWithoutCookie(t *testing.T) {
	m := newTestManager(nil)
	c, _ := newContext(echo.New())

	got, ok := m.CurrentIdentity(c)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestSessionManager_TamperedCookieIsAnonymous(t *testing.T) {
	m := newTestManager(nil)
	cookie := issuedCookie(t, m, NewIdentity("alice@capgemini.com", "genai"))
	parts := strings.Split(cookie.Value, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"group":"genai"`, `"group":"admin"`, 1)
	require.NotEqual(t, string(payload), forged)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))
	cookie.Value = strings.Join(parts, ".")

	c, _ := newContext(echo.New(), cookie)
	_, ok := m.CurrentIdentity(c)
	assert.False(t, ok)
}

func TestSessionManager_ForeignSecretIsAnonymous(t *testing.T) {
	other := NewSessionManager(SessionOptions{CookieName: "user_session", Secret: "other", MaxAge: time.Hour}, nil)
	cookie := issuedCookie(t, other, NewIdentity("mallory@capgemini.com", "admin"))

	c, _ := newContext(echo.New(), cookie)
	_, ok := newTestManager(nil).CurrentIdentity(c)
	assert.False(t, ok)
}

func TestSessionManager_ExpiredCookieIsAnonymous(t *testing.T) {
	m := newTestManager(nil)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	cookie := issuedCookie(t, m, NewIdentity("alice@capgemini.com", "genai"))

	m.now = time.Now
	c, _ := newContext(echo.New(), cookie)
	_, ok := m.CurrentIdentity(c)
	assert.False(t, ok)
}

func TestSessionManager_ClearExpiresCookie(t *testing.T) {
	m := newTestManager(nil)
	cookie := issuedCookie(t, m, NewIdentity("alice@capgemini.com", "genai"))

	c, rec := newContext(echo.New(), cookie)
	require.NoError(t, m.Clear(c))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "user_session", cleared[0].Name)
	assert.Empty(t, cleared[0].Value)
	assert.Equal(t, -1, cleared[0].MaxAge)

	_, ok := IdentityFrom(c)
	assert.False(t, ok)
}

func TestSessionManager_ClearRevokesSession(t *testing.T) {
	revocations := newMemoryRevocations()
	m := newTestManager(revocations)
	cookie := issuedCookie(t, m, NewIdentity("alice@capgemini.com", "genai"))

	c, _ := newContext(echo.New(), cookie)
	require.NoError(t, m.Clear(c))
	require.Len(t, revocations.revoked, 1)
	for _, ttl := range revocations.revoked {
		assert.True(t, ttl > 0 && ttl <= time.Hour)
	}

	// a copy of the old cookie replayed after logout
	replay, _ := newContext(echo.New(), cookie)
	_, ok := m.CurrentIdentity(replay)
	assert.False(t, ok)
}

func TestSessionManager_RequireIdentity(t *testing.T) {
	m := newTestManager(nil)
	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "identity missing")
		}
		return c.String(http.StatusOK, id.Username+":"+id.Group)
	}, m.RequireIdentity(func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/login")
	}))

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("authenticated", func(t *testing.T) {
		cookie := issuedCookie(t, m, NewIdentity("alice@capgemini.com", "genai"))
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice:genai", rec.Body.String())
	})

	t.Run("garbage cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: "user_session", Value: "garbage"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})
}

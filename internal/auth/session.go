package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	sessionContextKey  = "session"
	identityContextKey = "identity"
)

// ErrSessionRevoked is returned when a well-formed session was logged out.
var ErrSessionRevoked = errors.New("session revoked")

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	Secret     string
	MaxAge     time.Duration
	Secure     bool
}

// sessionClaims is the signed payload stored in the cookie.
type sessionClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Group    string `json:"group"`
	jwt.RegisteredClaims
}

func (c *sessionClaims) identity() *Identity {
	return &Identity{Email: c.Email, Username: c.Username, Group: c.Group}
}

// SessionManager issues and reads identities carried in an HMAC-signed
// cookie. No session state is kept on the server apart from the optional
// revocation list.
type SessionManager struct {
	opts        SessionOptions
	secret      []byte
	revocations RevocationStore
	now         func() time.Time
}

// NewSessionManager creates a session manager. revocations may be nil.
func NewSessionManager(opts SessionOptions, revocations RevocationStore) *SessionManager {
	return &SessionManager{
		opts:        opts,
		secret:      []byte(opts.Secret),
		revocations: revocations,
		now:         time.Now,
	}
}

// CookieName returns the name of the session cookie.
func (m *SessionManager) CookieName() string {
	return m.opts.CookieName
}

// Issue stores identity in a fresh session cookie. Callers must have
// verified credentials first.
func (m *SessionManager) Issue(c echo.Context, identity Identity) error {
	token, err := m.encode(identity)
	if err != nil {
		return err
	}
	c.SetCookie(m.cookie(token, m.opts.MaxAge))
	return nil
}

// CurrentIdentity returns the identity in the request's session cookie.
// A missing, expired, tampered or revoked cookie reads as anonymous.
func (m *SessionManager) CurrentIdentity(c echo.Context) (*Identity, bool) {
	if id, ok := IdentityFrom(c); ok {
		return id, true
	}
	cookie, err := c.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := m.decode(c.Request().Context(), cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims.identity(), true
}

// RequireIdentity guards a route group. Anonymous requests are handed to
// onMissing; authenticated ones continue with the identity available
// through IdentityFrom.
func (m *SessionManager) RequireIdentity(onMissing echo.HandlerFunc) echo.MiddlewareFunc {
	guard := echojwt.WithConfig(echojwt.Config{
		ContextKey:  sessionContextKey,
		TokenLookup: "cookie:" + m.opts.CookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return m.decode(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return onMissing(c)
		},
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return guard(func(c echo.Context) error {
			if claims, ok := c.Get(sessionContextKey).(*sessionClaims); ok {
				c.Set(identityContextKey, claims.identity())
			}
			return next(c)
		})
	}
}

// Clear ends the session: the cookie is expired on the client and, when a
// revocation store is configured, its id is remembered until expiry.
func (m *SessionManager) Clear(c echo.Context) error {
	var err error
	if cookie, cookieErr := c.Cookie(m.opts.CookieName); cookieErr == nil && cookie.Value != "" {
		if claims, decodeErr := m.decode(c.Request().Context(), cookie.Value); decodeErr == nil {
			err = m.revoke(c.Request().Context(), claims)
		}
	}
	c.Set(identityContextKey, nil)
	c.SetCookie(m.cookie("", -1))
	return err
}

// IdentityFrom returns the identity attached by RequireIdentity.
func IdentityFrom(c echo.Context) (*Identity, bool) {
	id, ok := c.Get(identityContextKey).(*Identity)
	return id, ok && id != nil
}

func (m *SessionManager) encode(identity Identity) (string, error) {
	now := m.now()
	claims := &sessionClaims{
		Email:    identity.Email,
		Username: identity.Username,
		Group:    identity.Group,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.opts.MaxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *SessionManager) decode(ctx context.Context, tokenString string) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session")
	}
	if m.revocations != nil && m.revocations.IsRevoked(ctx, claims.ID) {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

func (m *SessionManager) revoke(ctx context.Context, claims *sessionClaims) error {
	if m.revocations == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.revocations.Revoke(ctx, claims.ID, ttl)
}

func (m *SessionManager) cookie(value string, maxAge time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		return cookie
	}
	cookie.MaxAge = int(maxAge.Seconds())
	cookie.Expires = m.now().Add(maxAge)
	return cookie
}

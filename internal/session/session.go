package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"weather-dashboard/internal/domain"
)

// Identity is the authenticated user carried by a session.
type Identity struct {
	UserID   int64
	Username string
	Role     domain.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin
}

// FromUser builds the session identity of a stored user.
func FromUser(u *domain.User) Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

type identityKey struct{}

// WithIdentity stores the identity in the request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity of the current request, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type Config struct {
	Secret     string
	CookieName string
	// TTL of zero keeps the session for the lifetime of the browser.
	TTL    time.Duration
	Secure bool
}

type claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256-signed session cookies.
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "weather_session"
	}
	return &Manager{
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
	}, nil
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

func (m *Manager) Issue(id Identity) (string, error) {
	now := time.Now()
	c := claims{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  fmt.Sprint(id.UserID),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *Manager) Parse(token string) (Identity, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return Identity{}, errors.New("invalid session token")
	}
	role := domain.Role(c.Role)
	if c.UserID <= 0 || c.Username == "" || !role.Valid() {
		return Identity{}, errors.New("invalid session claims")
	}
	return Identity{UserID: c.UserID, Username: c.Username, Role: role}, nil
}

// Establish writes the session cookie; id, username and role travel together in one token.
func (m *Manager) Establish(c *gin.Context, id Identity) error {
	token, err := m.Issue(id)
	if err != nil {
		return fmt.Errorf("issue session: %w", err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, int(m.ttl/time.Second), "/", "", m.secure, true)
	return nil
}

// Load returns the identity from the request cookie.
func (m *Manager) Load(c *gin.Context) (Identity, bool, error) {
	token, err := c.Cookie(m.cookieName)
	if err != nil || token == "" {
		return Identity{}, false, nil
	}
	id, err := m.Parse(token)
	if err != nil {
		return Identity{}, false, err
	}
	return id, true, nil
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

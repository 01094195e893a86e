// Package session ties an authenticated user to a browser via a signed
// cookie. Sessions are stateless: the cookie holds a JWT with the user id,
// and the user record is re-read from the store on every request.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tasklist/internals/models"
)

// Identity is what a record needs to be logged in: a stable id. Credential
// checks stay on the record itself (models.User.CheckPassword).
type Identity interface {
	Identity() int64
}

// UserSource resolves a session's user id back to a full record.
type UserSource interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

const sessionTTL = 30 * 24 * time.Hour

type Manager struct {
	users      UserSource
	cookieName string
	secret     []byte
	secure     bool
}

func NewManager(users UserSource, cookieName, secret string, secure bool) *Manager {
	return &Manager{users: users, cookieName: cookieName, secret: []byte(secret), secure: secure}
}

type claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Login establishes the session by setting the signed cookie.
func (m *Manager) Login(w http.ResponseWriter, id Identity) error {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		UserID: id.Identity(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
		Expires:  now.Add(sessionTTL),
	})
	return nil
}

// Logout clears the session cookie.
func (m *Manager) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
		MaxAge:   -1,
	})
}

// CurrentUser resolves the request's session to a user. Any failure along
// the way — no cookie, bad signature, expired token, deleted user — is just
// an anonymous request.
func (m *Manager) CurrentUser(r *http.Request) (*models.User, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	token, err := jwt.ParseWithClaims(c.Value, &claims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	cl, ok := token.Claims.(*claims)
	if !ok {
		return nil, false
	}
	user, err := m.users.UserByID(r.Context(), cl.UserID)
	if err != nil {
		return nil, false
	}
	return user, true
}

// RequireAuth guards a handler: anonymous requests are redirected to the
// login page instead of running it.
func (m *Manager) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.CurrentUser(r); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasklist/internals/models"
	"tasklist/internals/session"
)

// fakeUsers is an in-memory UserSource.
type fakeUsers map[int64]*models.User

func (f fakeUsers) UserByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newTestManager(t *testing.T, users fakeUsers) *session.Manager {
	t.Helper()
	return session.NewManager(users, "tasklist_session", "test-secret", false)
}

// loginCookie logs u in against a recorder and returns the session cookie.
func loginCookie(t *testing.T, m *session.Manager, u *models.User) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := m.Login(rec, u); err != nil {
		t.Fatalf("Login: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Login set %d cookies, want 1", len(cookies))
	}
	return cookies[0]
}

func TestLogin_CurrentUserRoundTrip(t *testing.T) {
	alice := &models.User{Id: 1, Username: "alice"}
	m := newTestManager(t, fakeUsers{1: alice})

	c := loginCookie(t, m, alice)
	if !c.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	got, ok := m.CurrentUser(r)
	if !ok {
		t.Fatal("CurrentUser did not resolve a fresh session")
	}
	if got.Id != 1 || got.Username != "alice" {
		t.Errorf("CurrentUser = %+v, want alice", got)
	}
}

func TestCurrentUser_Anonymous(t *testing.T) {
	m := newTestManager(t, fakeUsers{})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := m.CurrentUser(r); ok {
		t.Error("CurrentUser resolved a user without a cookie")
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "tasklist_session", Value: "garbage"})
	if _, ok := m.CurrentUser(r); ok {
		t.Error("CurrentUser resolved a user from a garbage cookie")
	}
}

func TestCurrentUser_WrongSecret(t *testing.T) {
	alice := &models.User{Id: 1, Username: "alice"}
	signer := session.NewManager(fakeUsers{1: alice}, "tasklist_session", "other-secret", false)
	m := newTestManager(t, fakeUsers{1: alice})

	c := loginCookie(t, signer, alice)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	if _, ok := m.CurrentUser(r); ok {
		t.Error("cookie signed with a different secret was accepted")
	}
}

func TestCurrentUser_DeletedUser(t *testing.T) {
	alice := &models.User{Id: 1, Username: "alice"}
	users := fakeUsers{1: alice}
	m := newTestManager(t, users)

	c := loginCookie(t, m, alice)
	delete(users, 1)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	if _, ok := m.CurrentUser(r); ok {
		t.Error("session for a deleted user was accepted")
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	m := newTestManager(t, fakeUsers{})
	rec := httptest.NewRecorder()
	m.Logout(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Logout set %d cookies, want 1", len(cookies))
	}
	if cookies[0].Value != "" || cookies[0].MaxAge != -1 {
		t.Errorf("Logout cookie = %+v, want empty value with MaxAge -1", cookies[0])
	}
}

func TestRequireAuth(t *testing.T) {
	alice := &models.User{Id: 1, Username: "alice"}
	m := newTestManager(t, fakeUsers{1: alice})

	called := false
	h := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

	// Anonymous: redirected to /login, handler not run.
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/add", nil))
	if called {
		t.Error("protected handler ran for an anonymous request")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("got %d -> %q, want 303 -> /login", rec.Code, rec.Header().Get("Location"))
	}

	// Authenticated: handler runs.
	r := httptest.NewRequest(http.MethodGet, "/add", nil)
	r.AddCookie(loginCookie(t, m, alice))
	h(httptest.NewRecorder(), r)
	if !called {
		t.Error("protected handler did not run for an authenticated request")
	}
}

package users

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"tasklist/internals/models"
	"tasklist/internals/session"
	"tasklist/internals/store"
	"tasklist/internals/web"
)

type formData struct {
	Error    string
	Username string
}

// RegisterHandler serves the registration form on GET and creates the
// account on POST. A successful registration logs the new user in.
func RegisterHandler(st *store.Store, sessions *session.Manager, pages *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderForm(w, pages, "register.html", formData{})
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			renderForm(w, pages, "register.html", formData{Error: "Username and password required", Username: username})
			return
		}
		// Check if user exists
		if _, err := st.UserByUsername(r.Context(), username); err == nil {
			renderForm(w, pages, "register.html", formData{Error: "Username already taken", Username: username})
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		hash, err := models.HashPassword(password)
		if err != nil {
			http.Error(w, "Error hashing password", http.StatusInternalServerError)
			return
		}
		user, err := st.CreateUser(r.Context(), username, hash)
		if errors.Is(err, store.ErrUsernameTaken) {
			// Lost a race with a concurrent registration for the same name.
			renderForm(w, pages, "register.html", formData{Error: "Username already taken", Username: username})
			return
		} else if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if err := sessions.Login(w, user); err != nil {
			log.Printf("Error establishing session: %v", err)
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// LoginHandler serves the login form on GET and authenticates on POST.
// Unknown username and wrong password get the same generic message.
func LoginHandler(st *store.Store, sessions *session.Manager, pages *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderForm(w, pages, "login.html", formData{})
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")

		user, err := st.UserByUsername(r.Context(), username)
		if errors.Is(err, store.ErrNotFound) {
			renderForm(w, pages, "login.html", formData{Error: "Invalid username or password", Username: username})
			return
		} else if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if !user.CheckPassword(password) {
			renderForm(w, pages, "login.html", formData{Error: "Invalid username or password", Username: username})
			return
		}
		if err := sessions.Login(w, user); err != nil {
			log.Printf("Error establishing session: %v", err)
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// LogoutHandler clears the session and sends the browser to the login page.
func LogoutHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.Logout(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func renderForm(w http.ResponseWriter, pages *web.Renderer, name string, data formData) {
	if err := pages.Render(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
	}
}

package tasks

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"tasklist/internals/models"
	"tasklist/internals/session"
	"tasklist/internals/store"
	"tasklist/internals/web"
)

type homeData struct {
	LoggedIn bool
	Username string
	Tasks    []models.Task
}

// HomeHandler renders the task list. Anonymous visitors get an empty page
// with login/register links; the route itself is not protected.
func HomeHandler(st *store.Store, sessions *session.Manager, pages *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data homeData
		if user, ok := sessions.CurrentUser(r); ok {
			tasks, err := st.TasksByUser(r.Context(), user.Id)
			if err != nil {
				log.Printf("Error listing tasks for user %d: %v", user.Id, err)
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
			data = homeData{LoggedIn: true, Username: user.Username, Tasks: tasks}
		}
		if err := pages.Render(w, "index.html", data); err != nil {
			log.Printf("Error rendering index: %v", err)
		}
	}
}

// AddHandler creates a task from the posted form. Blank content is a no-op;
// an unparseable deadline is dropped but the task is still created.
func AddHandler(st *store.Store, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := sessions.CurrentUser(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		content := strings.TrimSpace(r.FormValue("task"))
		if content == "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		task := &models.Task{
			Content:  content,
			Priority: models.NormalizePriority(r.FormValue("priority")),
			Deadline: models.ParseDeadline(r.FormValue("deadline")),
			UserId:   user.Id,
		}
		if err := st.CreateTask(r.Context(), task); err != nil {
			log.Printf("Error inserting task: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// ToggleHandler flips a task's completion flag.
func ToggleHandler(st *store.Store, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, task, ok := resolveTask(w, r, st, sessions)
		if !ok {
			return
		}
		// A task owned by someone else is left untouched; the redirect is
		// identical either way so a valid foreign id reveals nothing.
		if task.UserId == user.Id {
			task.IsCompleted = !task.IsCompleted
			if err := st.UpdateTask(r.Context(), task); err != nil {
				log.Printf("Error updating task %d: %v", task.Id, err)
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// DeleteHandler removes a task, with the same ownership policy as toggle.
func DeleteHandler(st *store.Store, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, task, ok := resolveTask(w, r, st, sessions)
		if !ok {
			return
		}
		if task.UserId == user.Id {
			if err := st.DeleteTask(r.Context(), task.Id); err != nil {
				log.Printf("Error deleting task %d: %v", task.Id, err)
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// resolveTask pulls the {id} path value and loads the task and current user.
// It writes the response itself on failure: 404 for a bad or unknown id.
func resolveTask(w http.ResponseWriter, r *http.Request, st *store.Store, sessions *session.Manager) (*models.User, *models.Task, bool) {
	user, ok := sessions.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, nil, false
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, nil, false
	}
	task, err := st.TaskByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return nil, nil, false
	} else if err != nil {
		log.Printf("Error fetching task %d: %v", id, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return nil, nil, false
	}
	return user, task, true
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"

	"tasklist/internals/config"
	"tasklist/internals/models"
)

var (
	// ErrNotFound means the id or username resolves to no record.
	ErrNotFound = errors.New("store: not found")
	// ErrUsernameTaken means the users.username UNIQUE constraint fired.
	ErrUsernameTaken = errors.New("store: username taken")
)

type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to Postgres when a database URL is configured and falls back
// to the local SQLite file otherwise.
func Open(cfg *config.Config) (*Store, error) {
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", normalizeURL(cfg.Database.URL))
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return &Store{db: db, driver: "postgres"}, nil
	}
	db, err := sql.Open("sqlite3", cfg.Database.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Store{db: db, driver: "sqlite3"}, nil
}

// normalizeURL rewrites the legacy postgres:// scheme, still handed out by
// some hosting providers, to the name the driver expects.
func normalizeURL(u string) string {
	if rest, ok := strings.CutPrefix(u, "postgres://"); ok {
		return "postgresql://" + rest
	}
	return u
}

func (s *Store) Close() error { return s.db.Close() }

// Init creates the schema if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == "postgres" {
		idCol = "BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id %s,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`, idCol),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tasks (
			id %s,
			content TEXT NOT NULL,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			priority TEXT NOT NULL DEFAULT 'Medium',
			deadline TEXT,
			user_id BIGINT NOT NULL REFERENCES users(id)
		)`, idCol),
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// rebind converts ? placeholders to the $N form Postgres requires.
func (s *Store) rebind(q string) string {
	if s.driver != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// mapUnique translates driver-specific unique-violation errors.
func mapUnique(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrUsernameTaken
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrUsernameTaken
	}
	return err
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	if s.driver == "postgres" {
		var id int64
		q := s.rebind(`INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING id`)
		if err := s.db.QueryRowContext(ctx, q, username, passwordHash).Scan(&id); err != nil {
			return nil, mapUnique(err)
		}
		return &models.User{Id: id, Username: username, PasswordHash: passwordHash}, nil
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO users (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		return nil, mapUnique(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{Id: id, Username: username, PasswordHash: passwordHash}, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	q := s.rebind(`SELECT id, username, password_hash FROM users WHERE username = ?`)
	err := s.db.QueryRowContext(ctx, q, username).Scan(&u.Id, &u.Username, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	q := s.rebind(`SELECT id, username, password_hash FROM users WHERE id = ?`)
	err := s.db.QueryRowContext(ctx, q, id).Scan(&u.Id, &u.Username, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateTask inserts t and fills in its assigned id.
func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	if s.driver == "postgres" {
		q := s.rebind(`INSERT INTO tasks (content, is_completed, priority, deadline, user_id)
			VALUES (?, ?, ?, ?, ?) RETURNING id`)
		return s.db.QueryRowContext(ctx, q,
			t.Content, t.IsCompleted, t.Priority, deadlineValue(t.Deadline), t.UserId).Scan(&t.Id)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks (content, is_completed, priority, deadline, user_id)
		VALUES (?, ?, ?, ?, ?)`,
		t.Content, t.IsCompleted, t.Priority, deadlineValue(t.Deadline), t.UserId)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.Id = id
	return nil
}

func (s *Store) TaskByID(ctx context.Context, id int64) (*models.Task, error) {
	q := s.rebind(`SELECT id, content, is_completed, priority, deadline, user_id FROM tasks WHERE id = ?`)
	t, err := scanTask(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return t, nil
}

// TasksByUser lists a user's tasks in insertion order.
func (s *Store) TasksByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	q := s.rebind(`SELECT id, content, is_completed, priority, deadline, user_id
		FROM tasks WHERE user_id = ? ORDER BY id`)
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	q := s.rebind(`UPDATE tasks SET content = ?, is_completed = ?, priority = ?, deadline = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, q,
		t.Content, t.IsCompleted, t.Priority, deadlineValue(t.Deadline), t.Id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	q := s.rebind(`DELETE FROM tasks WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var deadline sql.NullString
	if err := row.Scan(&t.Id, &t.Content, &t.IsCompleted, &t.Priority, &deadline, &t.UserId); err != nil {
		return nil, err
	}
	if deadline.Valid {
		if d, err := time.Parse(models.DeadlineFormat, deadline.String); err == nil {
			t.Deadline = &d
		}
	}
	return &t, nil
}

// Deadlines are stored as YYYY-MM-DD text so both drivers round-trip them
// the same way.
func deadlineValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(models.DeadlineFormat)
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"tasklist/internals/config"
	"tasklist/internals/handlers/tasks"
	"tasklist/internals/handlers/users"
	"tasklist/internals/session"
	"tasklist/internals/store"
	"tasklist/internals/web"
)

func main() {
	_ = godotenv.Load() // .env is optional, real env wins
	cfg := config.MustLoad()

	st, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()
	fmt.Println("Database connected")

	if err := st.Init(context.Background()); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}
	fmt.Println("Tables created or already exist")

	pages, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	sessions := session.NewManager(st, cfg.Session.CookieName, cfg.Session.Secret, cfg.Session.Secure)

	router := http.NewServeMux()
	router.HandleFunc("GET /{$}", tasks.HomeHandler(st, sessions, pages))
	router.HandleFunc("POST /add", sessions.RequireAuth(tasks.AddHandler(st, sessions)))
	router.HandleFunc("GET /toggle/{id}", sessions.RequireAuth(tasks.ToggleHandler(st, sessions)))
	router.HandleFunc("GET /delete/{id}", sessions.RequireAuth(tasks.DeleteHandler(st, sessions)))
	router.HandleFunc("/register", users.RegisterHandler(st, sessions, pages))
	router.HandleFunc("/login", users.LoginHandler(st, sessions, pages))
	router.HandleFunc("GET /logout", sessions.RequireAuth(users.LogoutHandler(sessions)))
	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	fmt.Println("Router setup complete")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: handler,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Println("Server Started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-done
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to gracefully shutdown server: %v", err)
	}
	fmt.Println("Server stopped")
}

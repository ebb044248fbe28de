package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/taskboard/taskboard/internal/config"
	"github.com/taskboard/taskboard/internal/database"
	"github.com/taskboard/taskboard/internal/realtime"
)

type TaskboardApp struct {
	log            *log.Logger
	db             database.TaskboardRepository
	mux            *http.Server
	rt             *realtime.Server
	signingKey     []byte
	allowedOrigins []string
	allowAnonymous bool
}

func NewTaskboardApp(mux *http.ServeMux, logger *log.Logger, rt *realtime.Server,
	db database.TaskboardRepository, cfg *config.Config) *TaskboardApp {
	s := &TaskboardApp{
		log:            logger,
		db:             db,
		rt:             rt,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
		allowAnonymous: cfg.AllowAnonymous,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("GET /api/projects", s.authMiddleware(s.listProjects))
	mux.Handle("POST /api/projects", s.authMiddleware(s.createProject))
	mux.Handle("GET /api/tasks", s.authMiddleware(s.listTasks))
	mux.Handle("POST /api/tasks", s.authMiddleware(s.createTask))
	mux.Handle("PUT /api/tasks", s.authMiddleware(s.updateTask))
	mux.Handle("DELETE /api/tasks", s.authMiddleware(s.deleteTask))
	mux.Handle("GET /api/comments", s.authMiddleware(s.listComments))
	mux.Handle("GET /api/notifications", s.authMiddleware(s.listNotifications))
	mux.Handle("GET /api/notifications/unread-count", s.authMiddleware(s.unreadCount))
	mux.Handle("POST /api/notifications/read", s.authMiddleware(s.markNotificationRead))
	mux.Handle("POST /api/notifications/read-all", s.authMiddleware(s.markAllNotificationsRead))
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *TaskboardApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *TaskboardApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

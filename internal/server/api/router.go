package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kamikazebr/todo-otp/internal/server/logging"
	"go.uber.org/zap"
)

// RouterDeps collects what NewRouter mounts. DevInbox and StreamHub are
// only used when DevRoutes is set.
type RouterDeps struct {
	Auth      Authenticator
	Profiles  ProfileManager
	Todos     TodoManager
	DevInbox  DevInbox
	StreamHub StreamHub
	DevRoutes bool
	Logger    *zap.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	authHandler := NewAuthHandler(deps.Auth, logger)
	profileHandler := NewProfileHandler(deps.Profiles, logger)
	todoHandler := NewTodoHandler(deps.Todos, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "todo-otp",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Public routes
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/request-code", authHandler.RequestCode)
		r.Post("/verify-code", authHandler.VerifyCode)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Auth))

		r.Get("/api/me", profileHandler.GetProfile)
		r.Put("/api/me", profileHandler.UpdateProfile)

		r.Route("/api/todos", func(r chi.Router) {
			r.Get("/", todoHandler.ListTodos)
			r.Post("/", todoHandler.CreateTodo)
			r.Get("/{todo_id}", todoHandler.GetTodo)
			r.Put("/{todo_id}", todoHandler.UpdateTodo)
			r.Patch("/{todo_id}/toggle", todoHandler.ToggleTodo)
			r.Delete("/{todo_id}", todoHandler.DeleteTodo)
		})
	})

	if deps.DevRoutes && deps.DevInbox != nil && deps.StreamHub != nil {
		devHandler := NewDevMessagesHandler(deps.DevInbox, deps.StreamHub, logger)
		r.Route("/api/dev/messages", func(r chi.Router) {
			r.Get("/", devHandler.ListMessages)
			r.Post("/read-all", devHandler.MarkAllRead)
			r.Post("/{message_id}/read", devHandler.MarkRead)
			r.Get("/stream", devHandler.Stream)
		})
	}

	return r
}

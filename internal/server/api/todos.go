package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kamikazebr/todo-otp/internal/server/services"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"go.uber.org/zap"
)

type TodoManager interface {
	Create(ctx context.Context, userID uuid.UUID, input services.TodoInput) (*models.TodoWithOwner, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.TodoWithOwner, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.TodoWithOwner, error)
	Update(ctx context.Context, userID, id uuid.UUID, input services.TodoInput) (*models.TodoWithOwner, error)
	Toggle(ctx context.Context, userID, id uuid.UUID, completed bool) (*models.TodoWithOwner, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type TodoHandler struct {
	todos  TodoManager
	logger *zap.Logger
}

func NewTodoHandler(todos TodoManager, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, logger: logger}
}

func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	todos, err := h.todos.List(r.Context(), claims.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, models.ListTodosResponse{Todos: todos})
}

func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req models.CreateTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	todo, err := h.todos.Create(r.Context(), claims.UserID, services.TodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	id, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	todo, err := h.todos.Get(r.Context(), claims.UserID, id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	id, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	var req models.UpdateTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	todo, err := h.todos.Update(r.Context(), claims.UserID, id, services.TodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	id, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	var req models.ToggleTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	todo, err := h.todos.Toggle(r.Context(), claims.UserID, id, req.Completed)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	id, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	if err := h.todos.Delete(r.Context(), claims.UserID, id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func todoIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "todo_id"))
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid todo ID")
		return uuid.Nil, false
	}
	return id, true
}

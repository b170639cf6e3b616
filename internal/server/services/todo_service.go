package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/kamikazebr/todo-otp/internal/server/storage"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"go.uber.org/zap"
)

const maxTodoTitleLength = 200

// TodoInput carries the editable fields of a todo.
type TodoInput struct {
	Title       string
	Description *string
	Priority    string
}

type TodoService struct {
	todos  storage.TodoStore
	logger *zap.Logger
}

func NewTodoService(todos storage.TodoStore, logger *zap.Logger) *TodoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TodoService{todos: todos, logger: logger.Named("todos")}
}

func (s *TodoService) Create(ctx context.Context, userID uuid.UUID, input TodoInput) (*models.TodoWithOwner, error) {
	todo, err := normalizeTodoInput(input)
	if err != nil {
		return nil, err
	}
	todo.UserID = userID

	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, storageError("create todo", err)
	}
	s.logger.Debug("todo created", zap.String("todo_id", todo.ID.String()), zap.String("user_id", userID.String()))
	return s.reload(ctx, todo.ID)
}

func (s *TodoService) List(ctx context.Context, userID uuid.UUID) ([]models.TodoWithOwner, error) {
	todos, err := s.todos.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError("list todos", err)
	}
	if todos == nil {
		todos = []models.TodoWithOwner{}
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, userID, id uuid.UUID) (*models.TodoWithOwner, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *TodoService) Update(ctx context.Context, userID, id uuid.UUID, input TodoInput) (*models.TodoWithOwner, error) {
	existing, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	todo, err := normalizeTodoInput(input)
	if err != nil {
		return nil, err
	}

	existing.Title = todo.Title
	existing.Description = todo.Description
	existing.Priority = todo.Priority
	if err := s.todos.Update(ctx, existing); err != nil {
		return nil, storageError("update todo", err)
	}
	return s.reload(ctx, id)
}

func (s *TodoService) Toggle(ctx context.Context, userID, id uuid.UUID, completed bool) (*models.TodoWithOwner, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.todos.SetCompleted(ctx, id, completed); err != nil {
		return nil, storageError("toggle todo", err)
	}
	return s.reload(ctx, id)
}

func (s *TodoService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.todos.Delete(ctx, id); err != nil {
		return storageError("delete todo", err)
	}
	s.logger.Debug("todo deleted", zap.String("todo_id", id.String()), zap.String("user_id", userID.String()))
	return nil
}

// owned loads a todo and checks it belongs to userID.
func (s *TodoService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Todo, error) {
	todo, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get todo", err)
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}
	if todo.UserID != userID {
		return nil, ErrTodoForbidden
	}
	return todo, nil
}

func (s *TodoService) reload(ctx context.Context, id uuid.UUID) (*models.TodoWithOwner, error) {
	todo, err := s.todos.GetWithOwner(ctx, id)
	if err != nil {
		return nil, storageError("get todo", err)
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

func normalizeTodoInput(input TodoInput) (*models.Todo, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	if len([]rune(title)) > maxTodoTitleLength {
		return nil, validationError("title is too long")
	}

	var description *string
	if input.Description != nil {
		if d := strings.TrimSpace(*input.Description); d != "" {
			description = &d
		}
	}

	priority := models.Priority(strings.ToLower(strings.TrimSpace(input.Priority)))
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, validationError("priority must be one of low, medium, high")
	}

	return &models.Todo{Title: title, Description: description, Priority: priority}, nil
}

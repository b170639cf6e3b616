package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kamikazebr/todo-otp/pkg/models"
)

const todoWithOwnerSelect = `
	SELECT t.id, t.user_id, t.title, t.description, t.completed, t.priority,
	       t.created_at, t.updated_at, u.name AS user_name, u.email AS user_email
	FROM todos t
	INNER JOIN users u ON u.id = t.user_id`

type TodoRepository struct {
	db sqlx.ExtContext
}

func NewTodoRepository(db sqlx.ExtContext) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	query := `
		INSERT INTO todos (user_id, title, description, priority)
		VALUES ($1, $2, $3, $4)
		RETURNING id, completed, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		todo.UserID, todo.Title, todo.Description, todo.Priority,
	).Scan(&todo.ID, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)
}

func (r *TodoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	query := `
		SELECT id, user_id, title, description, completed, priority, created_at, updated_at
		FROM todos WHERE id = $1
	`
	err := sqlx.GetContext(ctx, r.db, &todo, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepository) GetWithOwner(ctx context.Context, id uuid.UUID) (*models.TodoWithOwner, error) {
	var todo models.TodoWithOwner
	err := sqlx.GetContext(ctx, r.db, &todo, todoWithOwnerSelect+` WHERE t.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TodoWithOwner, error) {
	todos := []models.TodoWithOwner{}
	query := todoWithOwnerSelect + ` WHERE t.user_id = $1 ORDER BY t.created_at ASC`
	err := sqlx.SelectContext(ctx, r.db, &todos, query, userID)
	return todos, err
}

func (r *TodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	query := `
		UPDATE todos
		SET title = $1, description = $2, priority = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, todo.Title, todo.Description, todo.Priority, todo.ID)
	return err
}

func (r *TodoRepository) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	query := `UPDATE todos SET completed = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, completed, id)
	return err
}

func (r *TodoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	return err
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var todoOwnerCols = []string{
	"id", "user_id", "title", "description", "completed", "priority",
	"created_at", "updated_at", "user_name", "user_email",
}

func TestTodoRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	userID, id := uuid.New(), uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)INSERT INTO todos \(user_id, title, description, priority\).*RETURNING id, completed, created_at, updated_at`).
		WithArgs(userID, "Buy milk", nil, models.PriorityHigh).
		WillReturnRows(sqlmock.NewRows([]string{"id", "completed", "created_at", "updated_at"}).AddRow(id.String(), false, now, now))

	todo := &models.Todo{UserID: userID, Title: "Buy milk", Priority: models.PriorityHigh}
	require.NoError(t, repo.Create(context.Background(), todo))
	assert.Equal(t, id, todo.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	userID := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)FROM todos t\s+INNER JOIN users u ON u.id = t.user_id WHERE t.user_id = \$1 ORDER BY t.created_at ASC`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(todoOwnerCols).
			AddRow(uuid.New().String(), userID.String(), "first", nil, false, "low", now, now, "Ada", "ada@example.com").
			AddRow(uuid.New().String(), userID.String(), "second", "details", true, "high", now, now, nil, "ada@example.com"))

	todos, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "first", todos[0].Title)
	assert.Equal(t, "ada@example.com", todos[0].UserEmail)
	assert.Equal(t, models.PriorityHigh, todos[1].Priority)
	require.NotNil(t, todos[1].Description)
	assert.Equal(t, "details", *todos[1].Description)
}

func TestTodoRepository_ListByUser_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	mock.ExpectQuery(`FROM todos t`).WillReturnRows(sqlmock.NewRows(todoOwnerCols))

	todos, err := repo.ListByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestTodoRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	mock.ExpectQuery(`FROM todos WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	todo, err := repo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, todo)
}

func TestTodoRepository_SetCompleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	id := uuid.New()
	mock.ExpectExec(`UPDATE todos SET completed = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(true, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetCompleted(context.Background(), id, true))
}

func TestTodoRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM todos WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
}

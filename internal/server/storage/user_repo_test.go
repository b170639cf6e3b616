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

var userCols = []string{"id", "name", "email", "email_verified", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)INSERT INTO users \(email, name, email_verified\).*RETURNING id, created_at, updated_at`).
		WithArgs("new@example.com", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), now, now))

	user := &models.User{Email: "new@example.com"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, id, user.ID)
	assert.Equal(t, now, user.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("existing@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(id.String(), "Ada", "existing@example.com", now, now, now))

	user, err := repo.GetByEmail(context.Background(), "existing@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Ada", user.DisplayName())
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_MarkEmailVerified(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectExec(`(?s)UPDATE users\s+SET email_verified = \$2, updated_at = \$2\s+WHERE id = \$1 AND email_verified IS NULL`).
		WithArgs(id, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkEmailVerified(context.Background(), id, now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New()
	mock.ExpectExec(`UPDATE users SET name = \$2, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs(id, "Ada Lovelace").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateName(context.Background(), id, "Ada Lovelace"))
}

package testutil

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kamikazebr/todo-otp/pkg/models"
)

// CreateTestUser creates a verified test user in the database
func (tdb *TestDB) CreateTestUser(ctx context.Context, email string) *models.User {
	tdb.t.Helper()

	user := &models.User{Email: email}
	err := tdb.DB.QueryRowxContext(ctx, `
		INSERT INTO users (email, email_verified)
		VALUES ($1, NOW())
		RETURNING id, email_verified, created_at, updated_at
	`, email).Scan(&user.ID, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		tdb.t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// DeleteTestUser removes a test user and, by cascade, their todos
func (tdb *TestDB) DeleteTestUser(ctx context.Context, userID uuid.UUID) {
	tdb.t.Helper()
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID)
}

// CreateTestTodo creates a todo owned by userID
func (tdb *TestDB) CreateTestTodo(ctx context.Context, userID uuid.UUID, title string) *models.Todo {
	tdb.t.Helper()

	todo := &models.Todo{UserID: userID, Title: title, Priority: models.PriorityMedium}
	err := tdb.DB.QueryRowxContext(ctx, `
		INSERT INTO todos (user_id, title, priority)
		VALUES ($1, $2, $3)
		RETURNING id, completed, created_at, updated_at
	`, userID, title, todo.Priority).Scan(&todo.ID, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		tdb.t.Fatalf("Failed to create test todo: %v", err)
	}
	return todo
}

// DeleteCodes removes every code issued for email
func (tdb *TestDB) DeleteCodes(ctx context.Context, email string) {
	tdb.t.Helper()
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM otps WHERE email = $1", email)
}

// GenerateTestEmail generates a unique test email
func GenerateTestEmail() string {
	return fmt.Sprintf("test-%s@example.com", uuid.New().String()[:8])
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kamikazebr/todo-otp/pkg/models"
)

const userColumns = `id, name, email, email_verified, created_at, updated_at`

type UserRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, email_verified)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		user.Email, user.Name, user.EmailVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	err := sqlx.GetContext(ctx, r.db, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := sqlx.GetContext(ctx, r.db, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// MarkEmailVerified stamps email_verified once; later calls leave the
// first timestamp in place.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE users
		SET email_verified = $2, updated_at = $2
		WHERE id = $1 AND email_verified IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}

func (r *UserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, name)
	return err
}

func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	err := sqlx.SelectContext(ctx, r.db, &users, query)
	return users, err
}

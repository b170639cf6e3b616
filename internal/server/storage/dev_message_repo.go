package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/kamikazebr/todo-otp/pkg/models"
)

type DevMessageRepository struct {
	db sqlx.ExtContext
}

func NewDevMessageRepository(db sqlx.ExtContext) *DevMessageRepository {
	return &DevMessageRepository{db: db}
}

func (r *DevMessageRepository) Create(ctx context.Context, msg *models.DevMessage) error {
	query := `
		INSERT INTO dev_messages (recipient, subject, content, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, read, created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		msg.To, msg.Subject, msg.Content, msg.Type,
	).Scan(&msg.ID, &msg.Read, &msg.CreatedAt)
}

// List returns all captured messages, newest first.
func (r *DevMessageRepository) List(ctx context.Context) ([]models.DevMessage, error) {
	messages := []models.DevMessage{}
	query := `
		SELECT id, recipient, subject, content, type, read, created_at
		FROM dev_messages
		ORDER BY created_at DESC, id DESC
	`
	err := sqlx.SelectContext(ctx, r.db, &messages, query)
	return messages, err
}

// MarkRead reports false when no message has the given id.
func (r *DevMessageRepository) MarkRead(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE dev_messages SET read = true WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *DevMessageRepository) MarkAllRead(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE dev_messages SET read = true WHERE read = false`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

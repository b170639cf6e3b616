package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kamikazebr/todo-otp/pkg/models"
)

type OTPRepository struct {
	db sqlx.ExtContext
}

func NewOTPRepository(db sqlx.ExtContext) *OTPRepository {
	return &OTPRepository{db: db}
}

// LockEmail takes a transaction-scoped advisory lock keyed on email so
// concurrent issue/verify calls for the same address run one at a time.
// Outside a transaction the lock is released immediately.
func (r *OTPRepository) LockEmail(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, email)
	return err
}

func (r *OTPRepository) CreateCode(ctx context.Context, code *models.OneTimeCode) error {
	query := `
		INSERT INTO otps (email, hashed_code, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.db.QueryRowxContext(ctx, query,
		code.Email, code.HashedCode, code.CreatedAt, code.ExpiresAt,
	).Scan(&code.ID)
}

func (r *OTPRepository) LatestCode(ctx context.Context, email string, forUpdate bool) (*models.OneTimeCode, error) {
	var code models.OneTimeCode
	query := `
		SELECT id, email, hashed_code, created_at, expires_at FROM otps
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	err := sqlx.GetContext(ctx, r.db, &code, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

func (r *OTPRepository) DeleteCodesForEmail(ctx context.Context, email string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE email = $1`, email)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *OTPRepository) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

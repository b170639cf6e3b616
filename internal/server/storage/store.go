package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kamikazebr/todo-otp/pkg/models"
)

// OTPStore is the code-record surface the auth flow needs.
type OTPStore interface {
	LockEmail(ctx context.Context, email string) error
	CreateCode(ctx context.Context, code *models.OneTimeCode) error
	LatestCode(ctx context.Context, email string, forUpdate bool) (*models.OneTimeCode, error)
	DeleteCodesForEmail(ctx context.Context, email string) (int64, error)
	DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}

// UserStore is implemented by UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	ListAll(ctx context.Context) ([]models.User, error)
}

// TodoStore is implemented by TodoRepository.
type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Todo, error)
	GetWithOwner(ctx context.Context, id uuid.UUID) (*models.TodoWithOwner, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TodoWithOwner, error)
	Update(ctx context.Context, todo *models.Todo) error
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DevMessageStore is implemented by DevMessageRepository.
type DevMessageStore interface {
	Create(ctx context.Context, msg *models.DevMessage) error
	List(ctx context.Context) ([]models.DevMessage, error)
	MarkRead(ctx context.Context, id int64) (bool, error)
	MarkAllRead(ctx context.Context) (int64, error)
}

// AuthTxFunc runs with code and user repositories bound to one transaction.
type AuthTxFunc func(ctx context.Context, codes OTPStore, users UserStore) error

// AuthStore gives the auth flow transactional access to codes and users.
type AuthStore interface {
	RunAuthTx(ctx context.Context, fn AuthTxFunc) error
	Codes() OTPStore
	Users() UserStore
}

type PostgresAuthStore struct {
	db *DB
}

func NewAuthStore(db *DB) *PostgresAuthStore {
	return &PostgresAuthStore{db: db}
}

func (s *PostgresAuthStore) RunAuthTx(ctx context.Context, fn AuthTxFunc) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(ctx, NewOTPRepository(tx), NewUserRepository(tx))
	})
}

func (s *PostgresAuthStore) Codes() OTPStore {
	return NewOTPRepository(s.db)
}

func (s *PostgresAuthStore) Users() UserStore {
	return NewUserRepository(s.db)
}

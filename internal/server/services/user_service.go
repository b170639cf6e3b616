package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/kamikazebr/todo-otp/internal/server/storage"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"github.com/kamikazebr/todo-otp/pkg/utils"
)

type UserService struct {
	users storage.UserStore
}

func NewUserService(users storage.UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateName stores "first last" as the display name. The first name is
// required.
func (s *UserService) UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName string) (*models.User, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, validationError("first name is required")
	}

	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	name := utils.JoinFullName(firstName, lastName)
	if err := s.users.UpdateName(ctx, id, name); err != nil {
		return nil, storageError("update name", err)
	}
	user.Name = &name
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, storageError("list users", err)
	}
	return users, nil
}

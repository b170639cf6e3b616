package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kamikazebr/todo-otp/internal/server/services"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"github.com/kamikazebr/todo-otp/pkg/utils"
)

const testSecret = "api-test-secret"

type fakeAuth struct {
	requestErr error
	verifyErr  error
	identity   *services.Identity
	requested  []string
}

func (f *fakeAuth) RequestCode(ctx context.Context, email string) (int, error) {
	f.requested = append(f.requested, email)
	if f.requestErr != nil {
		return 0, f.requestErr
	}
	return 600, nil
}

func (f *fakeAuth) VerifyCredentials(ctx context.Context, email, code string) (*services.Identity, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.identity, nil
}

func (f *fakeAuth) IssueSession(identity *services.Identity) (string, time.Time, error) {
	return utils.GenerateJWT(identity.UserID, identity.Email, "test", testSecret, time.Hour)
}

func (f *fakeAuth) ValidateSession(token string) (*utils.Claims, error) {
	return utils.ValidateJWT(token, testSecret)
}

type fakeProfiles struct {
	user *models.User
	err  error
}

func (f *fakeProfiles) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeProfiles) UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	name := utils.JoinFullName(firstName, lastName)
	f.user.Name = &name
	return f.user, nil
}

// fakeTodos records the last call and returns canned results.
type fakeTodos struct {
	mu       sync.Mutex
	todo     *models.TodoWithOwner
	err      error
	lastUser uuid.UUID
	lastID   uuid.UUID
	input    services.TodoInput
	toggled  *bool
	deleted  bool
}

func (f *fakeTodos) record(userID, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUser = userID
	f.lastID = id
}

func (f *fakeTodos) Create(ctx context.Context, userID uuid.UUID, input services.TodoInput) (*models.TodoWithOwner, error) {
	f.record(userID, uuid.Nil)
	f.input = input
	return f.todo, f.err
}

func (f *fakeTodos) List(ctx context.Context, userID uuid.UUID) ([]models.TodoWithOwner, error) {
	f.record(userID, uuid.Nil)
	if f.err != nil {
		return nil, f.err
	}
	if f.todo == nil {
		return []models.TodoWithOwner{}, nil
	}
	return []models.TodoWithOwner{*f.todo}, nil
}

func (f *fakeTodos) Get(ctx context.Context, userID, id uuid.UUID) (*models.TodoWithOwner, error) {
	f.record(userID, id)
	return f.todo, f.err
}

func (f *fakeTodos) Update(ctx context.Context, userID, id uuid.UUID, input services.TodoInput) (*models.TodoWithOwner, error) {
	f.record(userID, id)
	f.input = input
	return f.todo, f.err
}

func (f *fakeTodos) Toggle(ctx context.Context, userID, id uuid.UUID, completed bool) (*models.TodoWithOwner, error) {
	f.record(userID, id)
	f.toggled = &completed
	return f.todo, f.err
}

func (f *fakeTodos) Delete(ctx context.Context, userID, id uuid.UUID) error {
	f.record(userID, id)
	if f.err == nil {
		f.deleted = true
	}
	return f.err
}

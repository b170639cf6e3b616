package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kamikazebr/todo-otp/internal/server/storage"
	"github.com/kamikazebr/todo-otp/pkg/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeAuthState is an in-memory users/otps pair. RunAuthTx serializes
// callers and restores the previous state when fn fails.
type fakeAuthState struct {
	mu    sync.Mutex
	codes []models.OneTimeCode
	users map[string]*models.User

	createCodeErr error
	getUserErr    error
}

type fakeAuthStore struct {
	state *fakeAuthState
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{state: &fakeAuthState{users: map[string]*models.User{}}}
}

func (s *fakeAuthStore) RunAuthTx(ctx context.Context, fn storage.AuthTxFunc) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	codes := append([]models.OneTimeCode(nil), s.state.codes...)
	users := make(map[string]*models.User, len(s.state.users))
	for k, u := range s.state.users {
		cp := *u
		users[k] = &cp
	}

	if err := fn(ctx, fakeOTPStore{s.state}, fakeUserStore{s.state}); err != nil {
		s.state.codes = codes
		s.state.users = users
		return err
	}
	return nil
}

func (s *fakeAuthStore) Codes() storage.OTPStore {
	return lockedOTPStore{s.state}
}

func (s *fakeAuthStore) Users() storage.UserStore {
	return fakeUserStore{s.state}
}

func (s *fakeAuthStore) codesFor(email string) []models.OneTimeCode {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	var out []models.OneTimeCode
	for _, c := range s.state.codes {
		if c.Email == email {
			out = append(out, c)
		}
	}
	return out
}

func (s *fakeAuthStore) user(email string) *models.User {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	u, ok := s.state.users[email]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (s *fakeAuthStore) addCode(code models.OneTimeCode) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	code.ID = uuid.New()
	s.state.codes = append(s.state.codes, code)
}

func (s *fakeAuthStore) addUser(user *models.User) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.state.users[user.Email] = user
}

// fakeOTPStore assumes the state lock is already held.
type fakeOTPStore struct {
	state *fakeAuthState
}

func (f fakeOTPStore) LockEmail(ctx context.Context, email string) error { return nil }

func (f fakeOTPStore) CreateCode(ctx context.Context, code *models.OneTimeCode) error {
	if f.state.createCodeErr != nil {
		return f.state.createCodeErr
	}
	code.ID = uuid.New()
	f.state.codes = append(f.state.codes, *code)
	return nil
}

func (f fakeOTPStore) LatestCode(ctx context.Context, email string, forUpdate bool) (*models.OneTimeCode, error) {
	var matching []models.OneTimeCode
	for _, c := range f.state.codes {
		if c.Email == email {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		return nil, nil
	}
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})
	latest := matching[0]
	return &latest, nil
}

func (f fakeOTPStore) DeleteCodesForEmail(ctx context.Context, email string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	kept := f.state.codes[:0:0]
	var n int64
	for _, c := range f.state.codes {
		if c.Email == email {
			n++
			continue
		}
		kept = append(kept, c)
	}
	f.state.codes = kept
	return n, nil
}

func (f fakeOTPStore) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	kept := f.state.codes[:0:0]
	var n int64
	for _, c := range f.state.codes {
		if c.ExpiresAt.Before(now) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	f.state.codes = kept
	return n, nil
}

// lockedOTPStore takes the state lock itself, for use outside RunAuthTx.
type lockedOTPStore struct {
	state *fakeAuthState
}

func (l lockedOTPStore) LockEmail(ctx context.Context, email string) error { return nil }

func (l lockedOTPStore) CreateCode(ctx context.Context, code *models.OneTimeCode) error {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return fakeOTPStore(l).CreateCode(ctx, code)
}

func (l lockedOTPStore) LatestCode(ctx context.Context, email string, forUpdate bool) (*models.OneTimeCode, error) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return fakeOTPStore(l).LatestCode(ctx, email, forUpdate)
}

func (l lockedOTPStore) DeleteCodesForEmail(ctx context.Context, email string) (int64, error) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return fakeOTPStore(l).DeleteCodesForEmail(ctx, email)
}

func (l lockedOTPStore) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return fakeOTPStore(l).DeleteExpiredCodes(ctx, now)
}

// fakeUserStore assumes the state lock is already held when used inside
// RunAuthTx. The profile tests use it directly without contention.
type fakeUserStore struct {
	state *fakeAuthState
}

func (f fakeUserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.state.users[user.Email] = &cp
	return nil
}

func (f fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.state.getUserErr != nil {
		return nil, f.state.getUserErr
	}
	u, ok := f.state.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.state.getUserErr != nil {
		return nil, f.state.getUserErr
	}
	for _, u := range f.state.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeUserStore) MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	for _, u := range f.state.users {
		if u.ID == id && u.EmailVerified == nil {
			t := at
			u.EmailVerified = &t
		}
	}
	return nil
}

func (f fakeUserStore) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	for _, u := range f.state.users {
		if u.ID == id {
			n := name
			u.Name = &n
		}
	}
	return nil
}

func (f fakeUserStore) ListAll(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.state.users {
		out = append(out, *u)
	}
	return out, nil
}

type fakeMailer struct {
	mu       sync.Mutex
	messages []Message
	err      error
	// onDeliver runs before err is returned.
	onDeliver func()
}

func (m *fakeMailer) Deliver(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.onDeliver != nil {
		m.onDeliver()
	}
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *fakeMailer) sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

type fakeTodoStore struct {
	mu    sync.Mutex
	todos map[uuid.UUID]models.Todo
	users map[uuid.UUID]string
	err   error
}

func newFakeTodoStore() *fakeTodoStore {
	return &fakeTodoStore{todos: map[uuid.UUID]models.Todo{}, users: map[uuid.UUID]string{}}
}

func (f *fakeTodoStore) Create(ctx context.Context, todo *models.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	todo.ID = uuid.New()
	todo.CreatedAt = time.Now()
	todo.UpdatedAt = todo.CreatedAt
	f.todos[todo.ID] = *todo
	return nil
}

func (f *fakeTodoStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.todos[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeTodoStore) GetWithOwner(ctx context.Context, id uuid.UUID) (*models.TodoWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.todos[id]
	if !ok {
		return nil, nil
	}
	return &models.TodoWithOwner{Todo: t, UserEmail: f.users[t.UserID]}, nil
}

func (f *fakeTodoStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TodoWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.TodoWithOwner
	for _, t := range f.todos {
		if t.UserID == userID {
			out = append(out, models.TodoWithOwner{Todo: t, UserEmail: f.users[userID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTodoStore) Update(ctx context.Context, todo *models.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.todos[todo.ID] = *todo
	return nil
}

func (f *fakeTodoStore) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.todos[id]
	t.Completed = completed
	f.todos[id] = t
	return nil
}

func (f *fakeTodoStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.todos, id)
	return nil
}

type fakeDevMessageStore struct {
	mu       sync.Mutex
	messages []models.DevMessage
	nextID   int64
}

func (f *fakeDevMessageStore) Create(ctx context.Context, msg *models.DevMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg.ID = f.nextID
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeDevMessageStore) List(ctx context.Context) ([]models.DevMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.DevMessage, 0, len(f.messages))
	for i := len(f.messages) - 1; i >= 0; i-- {
		out = append(out, f.messages[i])
	}
	return out, nil
}

func (f *fakeDevMessageStore) MarkRead(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == id {
			f.messages[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDevMessageStore) MarkAllRead(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.messages {
		if !f.messages[i].Read {
			f.messages[i].Read = true
			n++
		}
	}
	return n, nil
}

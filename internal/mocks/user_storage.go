package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/VitaminP8/gqlapi/graph/model"
	"github.com/VitaminP8/gqlapi/internal/storage"
)

// MockUserStorage implements user.UserStorage for tests.
type MockUserStorage struct {
	mu     sync.Mutex
	users  map[uint]*model.User
	nextID uint
	err    error
	calls  []string
}

func NewMockUserStorage() *MockUserStorage {
	return &MockUserStorage{
		users:  make(map[uint]*model.User),
		nextID: 1,
	}
}

// FailWith makes every following call return err (nil restores normal behaviour).
func (m *MockUserStorage) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the names of the methods invoked so far.
func (m *MockUserStorage) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockUserStorage) record(name string) error {
	m.calls = append(m.calls, name)
	return m.err
}

func (m *MockUserStorage) CreateUser(_ context.Context, input model.UserInput) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateUser"); err != nil {
		return nil, err
	}

	for _, u := range m.users {
		if u.Email == input.Email {
			return nil, storage.ErrDuplicateEmail
		}
	}

	u := &model.User{
		ID:        m.nextID,
		Name:      input.Name,
		Email:     input.Email,
		Age:       model.IntFromInt32(input.Age),
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.users[u.ID] = u

	cp := *u
	return &cp, nil
}

func (m *MockUserStorage) GetUserByID(_ context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetUserByID"); err != nil {
		return nil, err
	}

	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserStorage) GetUsers(_ context.Context, limit, offset int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetUsers"); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []*model.User
	for i, id := range ids {
		if i < offset || len(result) >= limit {
			continue
		}
		cp := *m.users[id]
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MockUserStorage) UpdateUser(_ context.Context, id uint, input model.UserUpdateInput) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateUser"); err != nil {
		return nil, err
	}

	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	if input.Name != nil {
		u.Name = *input.Name
	}
	if input.Email != nil {
		u.Email = *input.Email
	}
	if input.Age != nil {
		u.Age = model.IntFromInt32(input.Age)
	}

	cp := *u
	return &cp, nil
}

func (m *MockUserStorage) DeleteUserByID(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteUserByID"); err != nil {
		return err
	}

	if _, ok := m.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

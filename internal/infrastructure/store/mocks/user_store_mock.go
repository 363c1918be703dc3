package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain/user"
)

// MockUserStore is an in-memory implementation of user.Store for testing.
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]user.User // email -> user

	InsertCalls []string
	Err         error
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[string]user.User)}
}

func (m *MockUserStore) Insert(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	m.InsertCalls = append(m.InsertCalls, u.Email)
	if _, exists := m.users[u.Email]; exists {
		return user.ErrEmailTaken
	}
	m.users[u.Email] = *u
	return nil
}

func (m *MockUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	u, ok := m.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

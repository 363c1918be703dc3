package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain/order"
)

// MockOrderStore is an in-memory implementation of order.Store for testing.
type MockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order

	InsertCalls []string
	Err         error
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{orders: make(map[string]order.Order)}
}

func (m *MockOrderStore) Insert(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	m.InsertCalls = append(m.InsertCalls, o.ID)
	m.orders[o.ID] = *o
	return nil
}

func (m *MockOrderStore) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	orders := make([]order.Order, 0)
	for _, o := range m.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *MockOrderStore) Get(_ context.Context, id string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain/cart"
)

// MockCartStore is an in-memory implementation of cart.Store for testing.
// Mutations hold the lock for their whole read-modify-write, mirroring the
// atomicity the real stores get from the storage engine.
type MockCartStore struct {
	mu    sync.Mutex
	carts map[string]map[string]int // userID -> productID -> quantity

	// For tracking calls in tests
	AddCalls    []CartMutation
	SetCalls    []CartMutation
	RemoveCalls []CartMutation
	ClearCalls  []string

	// Err, when set, is returned by every operation
	Err error
}

// CartMutation records parameters passed to a mutating call
type CartMutation struct {
	UserID    string
	ProductID string
	Quantity  int
}

func NewMockCartStore() *MockCartStore {
	return &MockCartStore{carts: make(map[string]map[string]int)}
}

func (m *MockCartStore) Get(_ context.Context, userID string) ([]cart.LineEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	entries := make([]cart.LineEntry, 0)
	for productID, qty := range m.carts[userID] {
		entries = append(entries, cart.LineEntry{ProductID: productID, Quantity: qty})
	}
	return entries, nil
}

func (m *MockCartStore) AddItem(_ context.Context, userID, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	m.AddCalls = append(m.AddCalls, CartMutation{UserID: userID, ProductID: productID, Quantity: qty})
	if m.carts[userID] == nil {
		m.carts[userID] = make(map[string]int)
	}
	m.carts[userID][productID] += qty
	return nil
}

func (m *MockCartStore) SetQuantity(_ context.Context, userID, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	m.SetCalls = append(m.SetCalls, CartMutation{UserID: userID, ProductID: productID, Quantity: qty})
	entries, ok := m.carts[userID]
	if !ok {
		return cart.ErrNotFound
	}
	if _, ok := entries[productID]; !ok {
		return cart.ErrNotFound
	}
	if qty <= 0 {
		delete(entries, productID)
	} else {
		entries[productID] = qty
	}
	return nil
}

func (m *MockCartStore) RemoveItem(_ context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	m.RemoveCalls = append(m.RemoveCalls, CartMutation{UserID: userID, ProductID: productID})
	delete(m.carts[userID], productID)
	return nil
}

func (m *MockCartStore) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	m.ClearCalls = append(m.ClearCalls, userID)
	delete(m.carts, userID)
	return nil
}

package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/storefront/internal/domain/product"
)

// MockProductStore is an in-memory implementation of product.Store for testing.
type MockProductStore struct {
	mu       sync.RWMutex
	products map[string]product.Product

	GetCalls []string
	Err      error
}

func NewMockProductStore(seed ...product.Product) *MockProductStore {
	m := &MockProductStore{products: make(map[string]product.Product)}
	for _, p := range seed {
		m.products[p.ID] = p
	}
	return m
}

func (m *MockProductStore) List(_ context.Context) ([]product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	products := make([]product.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (m *MockProductStore) Get(_ context.Context, id string) (*product.Product, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, id)
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *MockProductStore) ReplaceAll(_ context.Context, products []product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	m.products = make(map[string]product.Product, len(products))
	for _, p := range products {
		m.products[p.ID] = p
	}
	return nil
}

// Delete removes a product directly, for dangling-reference tests.
func (m *MockProductStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
}

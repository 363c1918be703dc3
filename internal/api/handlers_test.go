package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/pricing"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/infrastructure/store/mocks"
)

// ============================================================
// Test server
// ============================================================

type testServer struct {
	handler   http.Handler
	cartStore *mocks.MockCartStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	taxRate := decimal.RequireFromString("0.18")

	productStore := mocks.NewMockProductStore(product.DefaultCatalog()...)
	cartStore := mocks.NewMockCartStore()
	orderStore := mocks.NewMockOrderStore()
	userStore := mocks.NewMockUserStore()

	tokens := auth.NewTokenService("test-secret-key-for-testing-purposes", 7*24*time.Hour)

	products := product.NewService(productStore)
	carts := cart.NewService(cartStore, productStore)
	orders := order.NewService(orderStore, productStore, taxRate, pricing.Round)
	users := user.NewService(userStore, tokens)

	handler := api.NewRouter(api.RouterConfig{
		Handlers:     api.NewHandlers(products, carts, orders, nil, logger),
		AuthHandlers: api.NewAuthHandlers(users, logger),
		Tokens:       tokens,
		Logger:       logger,
	})

	return &testServer{handler: handler, cartStore: cartStore}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		var v any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
		decoded, _ = v.(map[string]any)
	}
	return rec, decoded
}

func (s *testServer) register(t *testing.T, email, password string) string {
	t.Helper()
	rec, body := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register: %s", rec.Body.String())
	return body["token"].(string)
}

// ============================================================
// End-to-end shopping flow
// ============================================================

func TestShoppingFlow(t *testing.T) {
	srv := newTestServer(t)

	// Register and log back in.
	srv.register(t, "shopper@example.com", "password123")

	rec, body := srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "shopper@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := body["token"].(string)

	// Add the same product twice; quantities accumulate.
	for i := 0; i < 2; i++ {
		rec, _ = srv.do(t, http.MethodPost, "/cart", token, map[string]any{"productId": "1"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body = srv.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, "1", line["productId"])
	assert.Equal(t, float64(2), line["quantity"])
	assert.Equal(t, "Minimalist Backpack", line["product"].(map[string]any)["name"])

	rec, body = srv.do(t, http.MethodGet, "/cart/count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["count"])

	// Place the order. 2 x 89.99 = 179.98, tax 32, total 211.98.
	rec, body = srv.do(t, http.MethodPost, "/orders", token, map[string]any{
		"fullName":      "Jane Shopper",
		"email":         "shopper@example.com",
		"address":       "1 Main St",
		"phoneNumber":   "555-0100",
		"paymentMethod": "card",
		"totalPrice":    211.98,
		"items":         []map[string]any{{"productId": "1", "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID := body["orderId"].(string)
	assert.NotEmpty(t, orderID)
	assert.Equal(t, "confirmed", body["status"])

	// Checkout cleared the cart.
	rec, body = srv.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["items"])
	assert.NotEmpty(t, srv.cartStore.ClearCalls)

	// The order is retrievable with the snapshot totals.
	rec, body = srv.do(t, http.MethodGet, "/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 211.98, body["totalPrice"])
	assert.Equal(t, "confirmed", body["status"])
}

// ============================================================
// Authentication boundary
// ============================================================

func TestCart_RejectsMissingAndInvalidTokens(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage token", "not-a-jwt"},
		{"forged token", forgedToken(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := srv.do(t, http.MethodGet, "/cart", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", body["error"])
			assert.NotContains(t, body, "items")
		})
	}
}

func forgedToken(t *testing.T) string {
	t.Helper()
	other := auth.NewTokenService("a-completely-different-signing-secret", time.Hour)
	token, _, err := other.Issue("intruder", "intruder@example.com")
	require.NoError(t, err)
	return token
}

func TestOrders_ScopedToOwner(t *testing.T) {
	srv := newTestServer(t)

	owner := srv.register(t, "owner@example.com", "password123")
	other := srv.register(t, "other@example.com", "password123")

	rec, _ := srv.do(t, http.MethodPost, "/cart", owner, map[string]any{"productId": "8"})
	require.Equal(t, http.StatusOK, rec.Code)

	// 24.99 subtotal, tax 4, total 28.99.
	rec, body := srv.do(t, http.MethodPost, "/orders", owner, map[string]any{
		"fullName":      "Owner",
		"email":         "owner@example.com",
		"address":       "1 Main St",
		"phoneNumber":   "555-0100",
		"paymentMethod": "card",
		"totalPrice":    28.99,
		"items":         []map[string]any{{"productId": "8", "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID := body["orderId"].(string)

	rec, _ = srv.do(t, http.MethodGet, "/orders/"+orderID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = srv.do(t, http.MethodGet, "/orders", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

// ============================================================
// Auth endpoints
// ============================================================

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "jane@example.com", "password123")

	rec, body := srv.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "jane@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", body["error"])
}

func TestLogin_UniformFailureBody(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "jane@example.com", "password123")

	recWrongPass, bodyWrongPass := srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong-password",
	})
	recUnknown, bodyUnknown := srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusBadRequest, recWrongPass.Code)
	assert.Equal(t, recWrongPass.Code, recUnknown.Code)
	assert.Equal(t, bodyWrongPass, bodyUnknown)
	assert.Equal(t, "Invalid email or password", bodyWrongPass["error"])
}

// ============================================================
// Products
// ============================================================

func TestGetProducts_ListsCatalog(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var products []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 8)
	assert.Equal(t, 89.99, products[0]["price"])
}

func TestGetProduct_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec, body := srv.do(t, http.MethodGet, "/products/999", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", body["error"])
}

// ============================================================
// Cart edge cases
// ============================================================

func TestAddToCart_UnknownProduct(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "jane@example.com", "password123")

	rec, body := srv.do(t, http.MethodPost, "/cart", token, map[string]any{"productId": "999"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown product", body["error"])
}

func TestUpdateCartQuantity_ItemNotInCart(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "jane@example.com", "password123")

	rec, body := srv.do(t, http.MethodPut, "/cart", token, map[string]any{
		"productId": "1",
		"quantity":  3,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Item not found", body["error"])
}

func TestUpdateCartQuantity_ZeroRemoves(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "jane@example.com", "password123")

	rec, _ := srv.do(t, http.MethodPost, "/cart", token, map[string]any{"productId": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = srv.do(t, http.MethodPut, "/cart", token, map[string]any{
		"productId": "1",
		"quantity":  0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := srv.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["items"])
}

func TestRemoveFromCart(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "jane@example.com", "password123")

	rec, _ := srv.do(t, http.MethodPost, "/cart", token, map[string]any{"productId": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = srv.do(t, http.MethodPost, "/cart", token, map[string]any{"productId": "2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := srv.do(t, http.MethodDelete, "/cart", token, map[string]any{"productId": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item removed", body["message"])

	rec, body = srv.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].(map[string]any)["productId"])
}

// ============================================================
// Order edge cases
// ============================================================

func TestPlaceOrder_TotalMismatch(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "jane@example.com", "password123")

	rec, body := srv.do(t, http.MethodPost, "/orders", token, map[string]any{
		"fullName":      "Jane",
		"email":         "jane@example.com",
		"address":       "1 Main St",
		"phoneNumber":   "555-0100",
		"paymentMethod": "card",
		"totalPrice":    1.00,
		"items":         []map[string]any{{"productId": "1", "quantity": 1}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "total does not match current prices", body["error"])

	// A rejected order must not clear the cart.
	assert.Empty(t, srv.cartStore.ClearCalls)
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "jane@example.com", "password123")

	rec, body := srv.do(t, http.MethodPost, "/orders", token, map[string]any{
		"fullName":   "Jane",
		"totalPrice": 0,
		"items":      []map[string]any{},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "order must contain at least one item", body["error"])
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
)

// BadgeCounts is the optional cache consulted by GET /cart/count before
// falling back to a live count.
type BadgeCounts interface {
	GetCount(ctx context.Context, userID string) (int, bool, error)
}

type Handlers struct {
	products *product.Service
	carts    *cart.Service
	orders   *order.Service
	counts   BadgeCounts
	logger   *zap.Logger
}

func NewHandlers(products *product.Service, carts *cart.Service, orders *order.Service, counts BadgeCounts, logger *zap.Logger) *Handlers {
	return &Handlers{
		products: products,
		carts:    carts,
		orders:   orders,
		counts:   counts,
		logger:   logger,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.internalError(w, "list products", err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, "Product not found", http.StatusNotFound)
			return
		}
		h.internalError(w, "get product", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	items, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		h.internalError(w, "get cart", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.carts.Add(r.Context(), userID, req.ProductID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidProduct):
			respondError(w, "productId required", http.StatusBadRequest)
		case errors.Is(err, cart.ErrUnknownProduct):
			respondError(w, "unknown product", http.StatusBadRequest)
		case errors.Is(err, cart.ErrInvalidQuantity):
			respondError(w, "quantity must be positive", http.StatusBadRequest)
		default:
			h.internalError(w, "add to cart", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Added to cart"})
}

func (h *Handlers) UpdateCartQuantity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" || req.Quantity == nil {
		respondError(w, "productId and numeric quantity required", http.StatusBadRequest)
		return
	}

	if err := h.carts.SetQuantity(r.Context(), userID, req.ProductID, *req.Quantity); err != nil {
		switch {
		case errors.Is(err, cart.ErrNotFound):
			respondError(w, "Item not found", http.StatusNotFound)
		default:
			h.internalError(w, "update quantity", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Quantity updated"})
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		respondError(w, "productId required", http.StatusBadRequest)
		return
	}

	if err := h.carts.Remove(r.Context(), userID, req.ProductID); err != nil {
		h.internalError(w, "remove from cart", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
}

// GetCartCount serves the badge. It prefers the cached count maintained by
// the notifier and falls back to a live count on a miss; a stale hit is
// tolerated because the next mutation refreshes it within the sub-second
// staleness window the badge accepts.
func (h *Handlers) GetCartCount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if h.counts != nil {
		if count, ok, err := h.counts.GetCount(r.Context(), userID); err == nil && ok {
			respondJSON(w, http.StatusOK, map[string]int{"count": count})
			return
		}
	}

	count, err := h.carts.Count(r.Context(), userID)
	if err != nil {
		h.internalError(w, "count cart", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Order Handlers

type placeOrderRequest struct {
	FullName      string          `json:"fullName"`
	Email         string          `json:"email"`
	Address       string          `json:"address"`
	PhoneNumber   string          `json:"phoneNumber"`
	PaymentMethod string          `json:"paymentMethod"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Items         []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

// PlaceOrder records the snapshot and then clears the cart. The two are
// independent operations: a crash in between leaves a stale cart until the
// next mutation, which is an accepted inconsistency window.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	items := make([]order.LineInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.LineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	contact := order.Contact{
		FullName:      req.FullName,
		Email:         req.Email,
		Address:       req.Address,
		PhoneNumber:   req.PhoneNumber,
		PaymentMethod: req.PaymentMethod,
	}

	placed, err := h.orders.Place(r.Context(), userID, contact, items, req.TotalPrice)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrEmptyOrder):
			respondError(w, "order must contain at least one item", http.StatusBadRequest)
		case errors.Is(err, order.ErrUnknownProduct):
			respondError(w, "unknown product in order", http.StatusBadRequest)
		case errors.Is(err, order.ErrTotalMismatch):
			respondError(w, "total does not match current prices", http.StatusBadRequest)
		default:
			h.internalError(w, "place order", err)
		}
		return
	}

	if err := h.carts.Clear(r.Context(), userID); err != nil {
		h.logger.Error("failed to clear cart after order",
			zap.String("user_id", userID),
			zap.String("order_id", placed.ID),
			zap.Error(err))
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"orderId": placed.ID,
		"status":  placed.Status,
		"message": "Order created successfully",
	})
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		h.internalError(w, "list orders", err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, "Order not found", http.StatusNotFound)
			return
		}
		h.internalError(w, "get order", err)
		return
	}

	// Shoppers only see their own orders.
	if o.UserID != middleware.GetUserID(r.Context()) {
		respondError(w, "forbidden", http.StatusForbidden)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

// Helper functions

func (h *Handlers) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	respondError(w, "internal error", http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

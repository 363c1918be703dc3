package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/domain/pricing"
	"github.com/example/storefront/internal/domain/product"
)

const StatusConfirmed = "confirmed"

var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyOrder     = errors.New("order must contain at least one item")
	ErrUnknownProduct = errors.New("unknown product in order")
	ErrTotalMismatch  = errors.New("total does not match current prices")
)

// Contact is the checkout contact block, stored verbatim on the snapshot.
type Contact struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	PhoneNumber   string `json:"phoneNumber"`
	PaymentMethod string `json:"paymentMethod"`
}

// LineItem is one order line with the price captured at placement time.
type LineItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// LineInput is a requested order line; the price is looked up server-side.
type LineInput struct {
	ProductID string
	Quantity  int
}

// Order is an immutable snapshot of a completed checkout. Subsequent
// product or price changes never touch it.
type Order struct {
	ID        string          `json:"orderId"`
	UserID    string          `json:"userId"`
	Contact   Contact         `json:"contact"`
	Items     []LineItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"totalPrice"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store is the persistence port for order snapshots.
type Store interface {
	Insert(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
}

type Service struct {
	store    Store
	products product.Store
	taxRate  decimal.Decimal
	rounding pricing.Policy
}

func NewService(store Store, products product.Store, taxRate decimal.Decimal, rounding pricing.Policy) *Service {
	return &Service{store: store, products: products, taxRate: taxRate, rounding: rounding}
}

// Place records an order snapshot and returns it. The total is recomputed
// from current catalog prices; a client total that disagrees is rejected
// rather than trusted. Prices on the snapshot are the catalog prices at
// placement time, not whatever the client sent.
func (s *Service) Place(ctx context.Context, userID string, contact Contact, items []LineInput, clientTotal decimal.Decimal) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	lines := make([]LineItem, 0, len(items))
	priced := make([]pricing.Item, 0, len(items))
	for _, in := range items {
		if in.ProductID == "" || in.Quantity < 1 {
			return nil, ErrEmptyOrder
		}
		p, err := s.products.Get(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, ErrUnknownProduct
			}
			return nil, fmt.Errorf("failed to resolve product %s: %w", in.ProductID, err)
		}
		lines = append(lines, LineItem{ProductID: p.ID, Quantity: in.Quantity, Price: p.Price})
		priced = append(priced, pricing.Item{Price: p.Price, Quantity: in.Quantity})
	}

	quote := pricing.Compute(priced, s.taxRate, s.rounding)
	if !quote.Total.Equal(clientTotal) {
		return nil, ErrTotalMismatch
	}

	o := &Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Contact:   contact,
		Items:     lines,
		Subtotal:  quote.Subtotal,
		Tax:       quote.Tax,
		Total:     quote.Total,
		Status:    StatusConfirmed,
		CreatedAt: time.Now(),
	}

	if err := s.store.Insert(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}
	return o, nil
}

// Preview computes the price breakdown for the given items at current
// catalog prices without persisting anything.
func (s *Service) Preview(ctx context.Context, items []LineInput) (*pricing.Quote, error) {
	priced := make([]pricing.Item, 0, len(items))
	for _, in := range items {
		p, err := s.products.Get(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, ErrUnknownProduct
			}
			return nil, fmt.Errorf("failed to resolve product %s: %w", in.ProductID, err)
		}
		priced = append(priced, pricing.Item{Price: p.Price, Quantity: in.Quantity})
	}
	quote := pricing.Compute(priced, s.taxRate, s.rounding)
	return &quote, nil
}

// ListByUser returns the user's order history, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.store.ListByUser(ctx, userID)
}

// Get returns a single order snapshot.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.store.Get(ctx, id)
}

package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/event"
)

var (
	ErrNotFound        = errors.New("cart item not found")
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrUnknownProduct  = errors.New("unknown product")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// LineEntry is one (productId, quantity) pair as persisted.
type LineEntry struct {
	ProductID string
	Quantity  int
}

// Item is a line entry with its product resolved. Product is nil when the
// catalog entry has disappeared since the item was added; such entries are
// kept, not dropped, and the caller decides how to render them.
type Item struct {
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *product.Product `json:"product"`
}

// Store is the persistence port for carts. Mutations must be atomic at the
// storage layer: AddItem is an increment, not a read-modify-write, so two
// concurrent adds for the same entry never lose an update.
type Store interface {
	// Get returns the cart's entries; an empty slice for a missing cart.
	Get(ctx context.Context, userID string) ([]LineEntry, error)
	// AddItem increments the entry's quantity by qty, creating the cart
	// and the entry as needed.
	AddItem(ctx context.Context, userID, productID string, qty int) error
	// SetQuantity overwrites the entry's quantity, removing the entry when
	// qty <= 0. Returns ErrNotFound when the cart or the entry is absent.
	SetQuantity(ctx context.Context, userID, productID string, qty int) error
	// RemoveItem deletes the entry; removing an absent entry is not an error.
	RemoveItem(ctx context.Context, userID, productID string) error
	// Clear deletes every entry; idempotent.
	Clear(ctx context.Context, userID string) error
}

// Notifier receives a signal after every successful cart mutation.
type Notifier interface {
	CartChanged(ctx context.Context, e event.CartChanged)
}

type Service struct {
	store     Store
	products  product.Store
	notifiers []Notifier
}

func NewService(store Store, products product.Store, notifiers ...Notifier) *Service {
	return &Service{store: store, products: products, notifiers: notifiers}
}

// Get returns the cart with product details attached. A missing cart is a
// valid empty state. Entries whose product no longer exists resolve with a
// nil Product.
func (s *Service) Get(ctx context.Context, userID string) ([]Item, error) {
	entries, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		item := Item{ProductID: e.ProductID, Quantity: e.Quantity}
		p, err := s.products.Get(ctx, e.ProductID)
		switch {
		case err == nil:
			item.Product = p
		case errors.Is(err, product.ErrNotFound):
			// tolerated dangling reference
		default:
			return nil, fmt.Errorf("failed to resolve product %s: %w", e.ProductID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Count returns the total item count across all entries.
func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	entries, err := s.store.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load cart: %w", err)
	}
	count := 0
	for _, e := range entries {
		count += e.Quantity
	}
	return count, nil
}

// Add increments the product's quantity by qty, creating the cart lazily.
// The product must exist in the catalog; adds for unknown products are
// rejected rather than left dangling.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return ErrUnknownProduct
		}
		return fmt.Errorf("failed to check product: %w", err)
	}

	if err := s.store.AddItem(ctx, userID, productID, qty); err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}

	s.notify(ctx, event.CartChanged{
		Type:       event.CartItemAdded,
		UserID:     userID,
		ProductID:  productID,
		Quantity:   qty,
		OccurredAt: time.Now(),
	})
	return nil
}

// SetQuantity overwrites the entry's quantity; qty <= 0 removes the entry.
// Fails with ErrNotFound when the user has no cart or the product is not in
// it, which is distinct from the cart merely being empty.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	if productID == "" {
		return ErrInvalidProduct
	}

	if err := s.store.SetQuantity(ctx, userID, productID, qty); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to set quantity: %w", err)
	}

	s.notify(ctx, event.CartChanged{
		Type:       event.CartQuantitySet,
		UserID:     userID,
		ProductID:  productID,
		Quantity:   qty,
		OccurredAt: time.Now(),
	})
	return nil
}

// Remove deletes the entry. Removing an absent entry is not an error.
func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return ErrInvalidProduct
	}

	if err := s.store.RemoveItem(ctx, userID, productID); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	s.notify(ctx, event.CartChanged{
		Type:       event.CartItemRemoved,
		UserID:     userID,
		ProductID:  productID,
		OccurredAt: time.Now(),
	})
	return nil
}

// Clear empties the cart. Used after order placement; idempotent.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.notify(ctx, event.CartChanged{
		Type:       event.CartCleared,
		UserID:     userID,
		OccurredAt: time.Now(),
	})
	return nil
}

func (s *Service) notify(ctx context.Context, e event.CartChanged) {
	for _, n := range s.notifiers {
		n.CartChanged(ctx, e)
	}
}

package event

import "time"

// Cart mutation event types.
const (
	CartItemAdded   = "cart.item_added"
	CartQuantitySet = "cart.quantity_set"
	CartItemRemoved = "cart.item_removed"
	CartCleared     = "cart.cleared"
)

// CartChanged is the signal fired after any cart mutation. It carries no
// cart state: interested parties re-fetch the cart for the user instead.
type CartChanged struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	ProductID  string    `json:"product_id,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

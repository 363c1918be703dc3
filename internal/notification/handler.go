// Package notification keeps the cart badge count fresh across processes.
// It consumes cart-mutation events and re-counts the affected user's cart,
// the same pull-based refresh the in-process badge performs.
package notification

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/event"
)

// CountSource yields the current total item count for a user.
type CountSource interface {
	Count(ctx context.Context, userID string) (int, error)
}

// CountSink receives the refreshed count.
type CountSink interface {
	SetCount(ctx context.Context, userID string, count int) error
}

// Handler processes cart-mutation events and refreshes the badge count.
type Handler struct {
	carts  CountSource
	counts CountSink
	logger *zap.Logger
}

func NewHandler(carts CountSource, counts CountSink, logger *zap.Logger) *Handler {
	return &Handler{carts: carts, counts: counts, logger: logger}
}

// HandleEvent processes one event from Kafka. The payload's type and
// quantity are ignored: the count is always re-fetched from the store, so
// out-of-order delivery converges on the right value.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var e event.CartChanged
	if err := json.Unmarshal(value, &e); err != nil {
		h.logger.Error("failed to unmarshal cart event", zap.Error(err))
		return err
	}
	if e.UserID == "" {
		h.logger.Warn("cart event without user id", zap.String("type", e.Type))
		return nil
	}

	count, err := h.carts.Count(ctx, e.UserID)
	if err != nil {
		h.logger.Error("failed to count cart",
			zap.String("user_id", e.UserID), zap.Error(err))
		return err
	}

	if err := h.counts.SetCount(ctx, e.UserID, count); err != nil {
		h.logger.Error("failed to store cart count",
			zap.String("user_id", e.UserID), zap.Error(err))
		return err
	}

	h.logger.Debug("cart count refreshed",
		zap.String("user_id", e.UserID),
		zap.String("trigger", e.Type),
		zap.Int("count", count))
	return nil
}

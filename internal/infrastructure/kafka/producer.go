package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/event"
)

// Producer publishes cart-mutation events, keyed by user so one user's
// mutations stay ordered within a partition.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer, logger: logger}
}

// CartChanged implements the cart service's Notifier port. Publishing is
// best-effort: the mutation already committed, so a broker failure is
// logged and swallowed rather than surfaced to the shopper.
func (p *Producer) CartChanged(ctx context.Context, e event.CartChanged) {
	data, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("failed to marshal cart event", zap.Error(err))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.UserID),
		Value: data,
		Time:  e.OccurredAt,
	})
	if err != nil {
		p.logger.Error("failed to publish cart event",
			zap.String("type", e.Type),
			zap.String("user_id", e.UserID),
			zap.Error(err))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

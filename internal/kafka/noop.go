package kafka

import (
	"context"
	"log/slog"
)

// NoopEventBus logs events without sending them to Kafka. Useful for local dev before wiring Kafka.
type NoopEventBus struct{}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus() *NoopEventBus {
	return &NoopEventBus{}
}

func (n *NoopEventBus) PublishCheckoutCreated(_ context.Context, orderID string, checkoutID string) error {
	slog.Debug("event::checkout_created", "order_id", orderID, "checkout_id", checkoutID)
	return nil
}

func (n *NoopEventBus) PublishOrderCompleted(_ context.Context, orderID string) error {
	slog.Debug("event::order_completed", "order_id", orderID)
	return nil
}

func (n *NoopEventBus) PublishPaymentFailed(_ context.Context, orderID string, reason string) error {
	slog.Debug("event::payment_failed", "order_id", orderID, "reason", reason)
	return nil
}

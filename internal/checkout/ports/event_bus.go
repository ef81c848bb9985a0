package ports

import "context"

// EventBus defines the contract for publishing payment lifecycle events.
type EventBus interface {
	PublishCheckoutCreated(ctx context.Context, orderID string, checkoutID string) error
	PublishOrderCompleted(ctx context.Context, orderID string) error
	PublishPaymentFailed(ctx context.Context, orderID string, reason string) error
}

package ports

import (
	"context"
	"errors"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	// SetCheckoutSession stores the hosted-page identifiers from the most
	// recent checkout attempt.
	SetCheckoutSession(ctx context.Context, id string, session CheckoutSession) error
	// PrependEvent adds a webhook event to the front of the order's event
	// history. History is never truncated or replaced.
	PrependEvent(ctx context.Context, id string, event domain.WebhookEvent) error
	// AppendNote records a human-readable audit note against the order.
	AppendNote(ctx context.Context, id string, note string) error
	// MarkPaid records the payment-complete side effect.
	MarkPaid(ctx context.Context, id string) error
}

// ListFilter narrows list queries by status and pagination.
type ListFilter struct {
	Status   *domain.OrderStatus
	Page     int
	PageSize int
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
)

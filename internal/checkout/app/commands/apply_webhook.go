package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

// ApplyWebhookCommand carries one inbound provider notification.
type ApplyWebhookCommand struct {
	OrderID string
	Event   domain.WebhookEvent
}

func (c ApplyWebhookCommand) Validate() error {
	if c.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}
	return nil
}

type ApplyWebhookHandler interface {
	Handle(ctx context.Context, cmd ApplyWebhookCommand) (*domain.Order, error)
}

// ApplyWebhookCommandHandler drives the order state machine from provider
// events. Webhooks may arrive late, duplicated, or out of order; the only
// ordering protections are the terminal-state guard and idempotent status
// writes.
type ApplyWebhookCommandHandler struct {
	repo   ports.OrderRepository
	events ports.EventBus
	logger *slog.Logger
}

func NewApplyWebhookCommandHandler(
	repo ports.OrderRepository,
	events ports.EventBus,
	logger *slog.Logger,
) *ApplyWebhookCommandHandler {
	return &ApplyWebhookCommandHandler{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (h *ApplyWebhookCommandHandler) Handle(ctx context.Context, cmd ApplyWebhookCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	// History is recorded before the status decision so late events on
	// finished orders still leave an audit trail.
	if err := h.repo.PrependEvent(ctx, order.ID, cmd.Event); err != nil {
		return nil, fmt.Errorf("record webhook event: %w", err)
	}

	if order.IsTerminal() {
		h.logger.InfoContext(ctx, "webhook ignored for terminal order",
			"order_id", order.ID,
			"order_status", order.Status,
			"transaction_status", cmd.Event.TransactionStatus,
		)
		return order, nil
	}

	transition := domain.TransitionFor(cmd.Event.TransactionStatus)
	if !transition.Apply {
		h.logger.WarnContext(ctx, "unrecognized transaction status",
			"order_id", order.ID,
			"transaction_status", cmd.Event.TransactionStatus,
		)
		return order, nil
	}

	if transition.MarkPaid {
		if err := h.repo.MarkPaid(ctx, order.ID); err != nil {
			return nil, fmt.Errorf("mark order paid: %w", err)
		}
	}

	if err := h.repo.UpdateStatus(ctx, order.ID, transition.Target); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	note := fmt.Sprintf("Checkout updated order to %s.", transition.Target)
	if err := h.repo.AppendNote(ctx, order.ID, note); err != nil {
		return nil, fmt.Errorf("append order note: %w", err)
	}

	h.logger.InfoContext(ctx, "webhook applied",
		"order_id", order.ID,
		"new_status", transition.Target,
		"transaction_status", cmd.Event.TransactionStatus,
	)

	h.publish(ctx, order.ID, transition, cmd.Event)

	order.Status = transition.Target
	return order, nil
}

// publish emits lifecycle events on a best-effort basis. The order state is
// already committed; a broker outage must not fail the webhook.
func (h *ApplyWebhookCommandHandler) publish(ctx context.Context, orderID string, t domain.Transition, ev domain.WebhookEvent) {
	var err error
	switch t.Target {
	case domain.StatusCompleted:
		err = h.events.PublishOrderCompleted(ctx, orderID)
	case domain.StatusFailed, domain.StatusCancelled:
		err = h.events.PublishPaymentFailed(ctx, orderID, string(ev.TransactionStatus))
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to publish lifecycle event",
			"order_id", orderID,
			"error", err,
		)
	}
}

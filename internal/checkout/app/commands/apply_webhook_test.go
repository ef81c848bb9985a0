package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopkit/fisrv-gateway/internal/checkout/app/commands"
	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func webhookEvent(status domain.TransactionStatus) domain.WebhookEvent {
	return domain.WebhookEvent{
		TransactionStatus: status,
		CheckoutID:        "chk-1",
		TraceID:           "trace-1",
		ReceivedAt:        time.Now().UTC(),
	}
}

func TestApplyWebhook(t *testing.T) {
	t.Run("approved completes the order and marks it paid first", func(t *testing.T) {
		order := pendingOrder("order-1")
		var calls []string

		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				copy := order
				return &copy, nil
			},
			prependEventFn: func(ctx context.Context, id string, event domain.WebhookEvent) error {
				calls = append(calls, "prepend")
				return nil
			},
			markPaidFn: func(ctx context.Context, id string) error {
				calls = append(calls, "markPaid")
				return nil
			},
			updateStatusFn: func(ctx context.Context, id string, status domain.OrderStatus) error {
				calls = append(calls, "updateStatus")
				if status != domain.StatusCompleted {
					t.Errorf("status = %s, want completed", status)
				}
				return nil
			},
		}
		var completedPublished bool
		events := &mockEventBus{
			publishOrderCompletedFn: func(ctx context.Context, orderID string) error {
				completedPublished = true
				return nil
			},
		}
		handler := commands.NewApplyWebhookCommandHandler(repo, events, discardLogger())

		updated, err := handler.Handle(context.Background(), commands.ApplyWebhookCommand{
			OrderID: "order-1",
			Event:   webhookEvent(domain.TxApproved),
		})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if updated.Status != domain.StatusCompleted {
			t.Errorf("status = %s, want completed", updated.Status)
		}
		if len(calls) != 3 || calls[0] != "prepend" || calls[1] != "markPaid" || calls[2] != "updateStatus" {
			t.Errorf("unexpected call order: %v", calls)
		}
		if !completedPublished {
			t.Error("expected order-completed event to be published")
		}
	})

	t.Run("waiting puts the order on hold without paying", func(t *testing.T) {
		order := pendingOrder("order-2")
		markPaidCalled := false

		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				copy := order
				return &copy, nil
			},
			markPaidFn: func(ctx context.Context, id string) error {
				markPaidCalled = true
				return nil
			},
		}
		handler := commands.NewApplyWebhookCommandHandler(repo, &mockEventBus{}, discardLogger())

		updated, err := handler.Handle(context.Background(), commands.ApplyWebhookCommand{
			OrderID: "order-2",
			Event:   webhookEvent(domain.TxWaiting),
		})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if updated.Status != domain.StatusOnHold {
			t.Errorf("status = %s, want on-hold", updated.Status)
		}
		if markPaidCalled {
			t.Error("waiting must never mark the order paid")
		}
	})

	t.Run("declined cancels the order and reports the failure", func(t *testing.T) {
		order := pendingOrder("order-3")
		var failedReason string

		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				copy := order
				return &copy, nil
			},
		}
		events := &mockEventBus{
			publishPaymentFailedFn: func(ctx context.Context, orderID, reason string) error {
				failedReason = reason
				return nil
			},
		}
		handler := commands.NewApplyWebhookCommandHandler(repo, events, discardLogger())

		updated, err := handler.Handle(context.Background(), commands.ApplyWebhookCommand{
			OrderID: "order-3",
			Event:   webhookEvent(domain.TxDeclined),
		})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if updated.Status != domain.StatusCancelled {
			t.Errorf("status = %s, want cancelled", updated.Status)
		}
		if failedReason != string(domain.TxDeclined) {
			t.Errorf("failure reason = %s, want DECLINED", failedReason)
		}
	})

	t.Run("terminal order records the event but keeps its status", func(t *testing.T) {
		now := time.Now().UTC()
		order := pendingOrder("order-4")
		order.Status = domain.StatusCompleted
		order.PaidAt = &now

		eventRecorded := false
		statusUpdated := false
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				copy := order
				return &copy, nil
			},
			prependEventFn: func(ctx context.Context, id string, event domain.WebhookEvent) error {
				eventRecorded = true
				return nil
			},
			updateStatusFn: func(ctx context.Context, id string, status domain.OrderStatus) error {
				statusUpdated = true
				return nil
			},
		}
		handler := commands.NewApplyWebhookCommandHandler(repo, &mockEventBus{}, discardLogger())

		updated, err := handler.Handle(context.Background(), commands.ApplyWebhookCommand{
			OrderID: "order-4",
			Event:   webhookEvent(domain.TxDeclined),
		})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !eventRecorded {
			t.Error("late events must still be recorded for audit")
		}
		if statusUpdated {
			t.Error("terminal orders must never be transitioned")
		}
		if updated.Status != domain.StatusCompleted {
			t.Errorf("status = %s, want completed", updated.Status)
		}
	})

	t.Run("unrecognized status leaves the order untouched", func(t *testing.T) {
		order := pendingOrder("order-5")
		statusUpdated := false
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				copy := order
				return &copy, nil
			},
			updateStatusFn: func(ctx context.Context, id string, status domain.OrderStatus) error {
				statusUpdated = true
				return nil
			},
		}
		handler := commands.NewApplyWebhookCommandHandler(repo, &mockEventBus{}, discardLogger())

		updated, err := handler.Handle(context.Background(), commands.ApplyWebhookCommand{
			OrderID: "order-5",
			Event:   webhookEvent("FUTURE_STATUS"),
		})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if statusUpdated {
			t.Error("unrecognized statuses must not transition the order")
		}
		if updated.Status != domain.StatusPending {
			t.Errorf("status = %s, want pending", updated.Status)
		}
	})

	t.Run("broker outage does not fail the webhook", func(t *testing.T) {
		order := pendingOrder("order-6")
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				copy := order
				return &copy, nil
			},
		}
		events := &mockEventBus{
			publishOrderCompletedFn: func(ctx context.Context, orderID string) error {
				return errors.New("broker unavailable")
			},
		}
		handler := commands.NewApplyWebhookCommandHandler(repo, events, discardLogger())

		if _, err := handler.Handle(context.Background(), commands.ApplyWebhookCommand{
			OrderID: "order-6",
			Event:   webhookEvent(domain.TxApproved),
		}); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
	})

	t.Run("returns error for unknown order", func(t *testing.T) {
		handler := commands.NewApplyWebhookCommandHandler(&mockRepository{}, &mockEventBus{}, discardLogger())

		_, err := handler.Handle(context.Background(), commands.ApplyWebhookCommand{
			OrderID: "missing",
			Event:   webhookEvent(domain.TxApproved),
		})

		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("fails when the event cannot be recorded", func(t *testing.T) {
		order := pendingOrder("order-7")
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				copy := order
				return &copy, nil
			},
			prependEventFn: func(ctx context.Context, id string, event domain.WebhookEvent) error {
				return errors.New("write failed")
			},
		}
		handler := commands.NewApplyWebhookCommandHandler(repo, &mockEventBus{}, discardLogger())

		if _, err := handler.Handle(context.Background(), commands.ApplyWebhookCommand{
			OrderID: "order-7",
			Event:   webhookEvent(domain.TxApproved),
		}); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

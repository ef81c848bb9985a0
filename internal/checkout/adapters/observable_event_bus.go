package adapters

import (
	"context"
	"time"

	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
	"github.com/shopkit/fisrv-gateway/internal/kafka"
	"github.com/shopkit/fisrv-gateway/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishCheckoutCreated(ctx context.Context, orderID string, checkoutID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishCheckoutCreated")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("checkout.id", checkoutID),
		attribute.String("event.type", "checkout.created"),
		attribute.String("topic", "checkout.created"),
	)

	start := time.Now()
	err := e.bus.PublishCheckoutCreated(ctx, orderID, checkoutID)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "checkout.created", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (e *ObservableEventBus) PublishOrderCompleted(ctx context.Context, orderID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderCompleted")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", "order.completed"),
		attribute.String("topic", "order.completed"),
	)

	start := time.Now()
	err := e.bus.PublishOrderCompleted(ctx, orderID)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "order.completed", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (e *ObservableEventBus) PublishPaymentFailed(ctx context.Context, orderID string, reason string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishPaymentFailed")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", "payment.failed"),
		attribute.String("topic", "payment.failed"),
		attribute.String("failure.reason", reason),
	)

	start := time.Now()
	err := e.bus.PublishPaymentFailed(ctx, orderID, reason)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "payment.failed", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopkit/fisrv-gateway/internal/checkout/metrics"
	"github.com/shopkit/fisrv-gateway/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCreateCheckoutHandler struct {
	handler CreateCheckoutHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCreateCheckoutHandler(handler CreateCheckoutHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCreateCheckoutHandler {
	return &ObservableCreateCheckoutHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCreateCheckoutHandler) Handle(ctx context.Context, cmd CreateCheckoutCommand) (*CheckoutResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "CreateCheckoutCommand.Handle")
	defer span.End()

	start := time.Now()
	var success, cached bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordCheckoutCreationDuration(ctx, duration)
		o.metrics.RecordCheckoutCreated(ctx, success, cached)
	}()

	o.logger.InfoContext(ctx, "creating checkout link",
		"order_id", cmd.OrderID,
		"variant", cmd.Variant,
	)

	result, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to create checkout link",
			"error", err,
			"order_id", cmd.OrderID,
		)
		return nil, err
	}

	cached = result.Cached
	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", cmd.OrderID),
		attribute.String("checkout.variant", string(cmd.Variant)),
		attribute.Bool("checkout.cached", result.Cached),
	)

	o.logger.InfoContext(ctx, "checkout link ready",
		"order_id", cmd.OrderID,
		"cached", result.Cached,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return result, nil
}

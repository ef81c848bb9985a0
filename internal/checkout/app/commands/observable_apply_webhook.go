package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/metrics"
	"github.com/shopkit/fisrv-gateway/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableApplyWebhookHandler struct {
	handler ApplyWebhookHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableApplyWebhookHandler(handler ApplyWebhookHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableApplyWebhookHandler {
	return &ObservableApplyWebhookHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableApplyWebhookHandler) Handle(ctx context.Context, cmd ApplyWebhookCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "ApplyWebhookCommand.Handle")
	defer span.End()

	start := time.Now()
	applied := false
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordWebhookDuration(ctx, duration)
		o.metrics.RecordWebhookEvent(ctx, string(cmd.Event.TransactionStatus), applied)
	}()

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to process webhook event",
			"error", err,
			"order_id", cmd.OrderID,
			"transaction_status", cmd.Event.TransactionStatus,
		)
		return nil, err
	}

	applied = true
	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", cmd.OrderID),
		attribute.String("order.status", string(order.Status)),
		attribute.String("webhook.transaction_status", string(cmd.Event.TransactionStatus)),
	)
	telemetry.SetSpanSuccess(span)

	return order, nil
}

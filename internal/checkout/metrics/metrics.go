package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	checkoutsCreatedTotal    metric.Int64Counter
	checkoutCreationDuration metric.Float64Histogram
	webhookEventsTotal       metric.Int64Counter
	webhookDuration          metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.checkoutsCreatedTotal, err = meter.Int64Counter(
		"checkouts_created_total",
		metric.WithDescription("Total number of hosted-checkout sessions requested"),
		metric.WithUnit("{checkout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkouts_created_total counter: %w", err)
	}

	m.checkoutCreationDuration, err = meter.Float64Histogram(
		"checkout_creation_duration_seconds",
		metric.WithDescription("Duration of checkout-link creation operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_creation_duration histogram: %w", err)
	}

	m.webhookEventsTotal, err = meter.Int64Counter(
		"webhook_events_total",
		metric.WithDescription("Total number of provider webhook events received"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create webhook_events_total counter: %w", err)
	}

	m.webhookDuration, err = meter.Float64Histogram(
		"webhook_processing_duration_seconds",
		metric.WithDescription("Duration of webhook event processing"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create webhook_processing_duration histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordCheckoutCreated(ctx context.Context, success, cached bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.checkoutsCreatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.Bool("cached", cached),
	))
}

func (m *Metrics) RecordCheckoutCreationDuration(ctx context.Context, durationSeconds float64) {
	m.checkoutCreationDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordWebhookEvent(ctx context.Context, transactionStatus string, applied bool) {
	m.webhookEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("transaction_status", transactionStatus),
		attribute.Bool("applied", applied),
	))
}

func (m *Metrics) RecordWebhookDuration(ctx context.Context, durationSeconds float64) {
	m.webhookDuration.Record(ctx, durationSeconds)
}

package adapters

import (
	"context"
	"time"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
	"github.com/shopkit/fisrv-gateway/internal/database"
	"github.com/shopkit/fisrv-gateway/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableRepository decorates an OrderRepository with tracing and query
// metrics.
type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) Create(ctx context.Context, order domain.Order) error {
	return r.instrument(ctx, "OrderRepository.Create", "create_order", order.ID, func(ctx context.Context) error {
		return r.repo.Create(ctx, order)
	})
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order *domain.Order
	err := r.instrument(ctx, "OrderRepository.GetByID", "get_order_by_id", id, func(ctx context.Context) error {
		var err error
		order, err = r.repo.GetByID(ctx, id)
		return err
	})
	return order, err
}

func (r *ObservableRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.List")
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("operation", "list"),
		attribute.Int("page", filter.Page),
		attribute.Int("page_size", filter.PageSize),
	}
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	orders, err := r.repo.List(ctx, filter)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "list_orders", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return r.instrument(ctx, "OrderRepository.UpdateStatus", "update_order_status", id, func(ctx context.Context) error {
		return r.repo.UpdateStatus(ctx, id, status)
	})
}

func (r *ObservableRepository) SetCheckoutSession(ctx context.Context, id string, session ports.CheckoutSession) error {
	return r.instrument(ctx, "OrderRepository.SetCheckoutSession", "set_checkout_session", id, func(ctx context.Context) error {
		return r.repo.SetCheckoutSession(ctx, id, session)
	})
}

func (r *ObservableRepository) PrependEvent(ctx context.Context, id string, event domain.WebhookEvent) error {
	return r.instrument(ctx, "OrderRepository.PrependEvent", "prepend_event", id, func(ctx context.Context) error {
		return r.repo.PrependEvent(ctx, id, event)
	})
}

func (r *ObservableRepository) AppendNote(ctx context.Context, id string, note string) error {
	return r.instrument(ctx, "OrderRepository.AppendNote", "append_note", id, func(ctx context.Context) error {
		return r.repo.AppendNote(ctx, id, note)
	})
}

func (r *ObservableRepository) MarkPaid(ctx context.Context, id string) error {
	return r.instrument(ctx, "OrderRepository.MarkPaid", "mark_paid", id, func(ctx context.Context) error {
		return r.repo.MarkPaid(ctx, id)
	})
}

func (r *ObservableRepository) instrument(ctx context.Context, spanName, operation, orderID string, fn func(ctx context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("operation", operation),
	)

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, operation, duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

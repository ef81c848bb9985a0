package commands_test

import (
	"context"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

type mockRepository struct {
	createFn             func(ctx context.Context, order domain.Order) error
	getByIDFn            func(ctx context.Context, id string) (*domain.Order, error)
	listFn               func(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error)
	updateStatusFn       func(ctx context.Context, id string, status domain.OrderStatus) error
	setCheckoutSessionFn func(ctx context.Context, id string, session ports.CheckoutSession) error
	prependEventFn       func(ctx context.Context, id string, event domain.WebhookEvent) error
	appendNoteFn         func(ctx context.Context, id string, note string) error
	markPaidFn           func(ctx context.Context, id string) error
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order) error {
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockRepository) SetCheckoutSession(ctx context.Context, id string, session ports.CheckoutSession) error {
	if m.setCheckoutSessionFn != nil {
		return m.setCheckoutSessionFn(ctx, id, session)
	}
	return nil
}

func (m *mockRepository) PrependEvent(ctx context.Context, id string, event domain.WebhookEvent) error {
	if m.prependEventFn != nil {
		return m.prependEventFn(ctx, id, event)
	}
	return nil
}

func (m *mockRepository) AppendNote(ctx context.Context, id string, note string) error {
	if m.appendNoteFn != nil {
		return m.appendNoteFn(ctx, id, note)
	}
	return nil
}

func (m *mockRepository) MarkPaid(ctx context.Context, id string) error {
	if m.markPaidFn != nil {
		return m.markPaidFn(ctx, id)
	}
	return nil
}

type mockClient struct {
	createSessionFn       func(ctx context.Context, creds domain.Credentials, req domain.CheckoutRequest) (*ports.CheckoutSession, error)
	refundFn              func(ctx context.Context, creds domain.Credentials, checkoutID string, amountMinor int64, currency domain.Currency) (string, error)
	validateCredentialsFn func(ctx context.Context, creds domain.Credentials) (*ports.CredentialCheck, error)
}

func (m *mockClient) CreateSession(ctx context.Context, creds domain.Credentials, req domain.CheckoutRequest) (*ports.CheckoutSession, error) {
	if m.createSessionFn != nil {
		return m.createSessionFn(ctx, creds, req)
	}
	return &ports.CheckoutSession{CheckoutID: "chk-1", RedirectURL: "https://pay.example.com/chk-1", TraceID: "trace-1"}, nil
}

func (m *mockClient) Refund(ctx context.Context, creds domain.Credentials, checkoutID string, amountMinor int64, currency domain.Currency) (string, error) {
	if m.refundFn != nil {
		return m.refundFn(ctx, creds, checkoutID, amountMinor, currency)
	}
	return "refund-1", nil
}

func (m *mockClient) ValidateCredentials(ctx context.Context, creds domain.Credentials) (*ports.CredentialCheck, error) {
	if m.validateCredentialsFn != nil {
		return m.validateCredentialsFn(ctx, creds)
	}
	return &ports.CredentialCheck{Valid: true}, nil
}

type mockTokenStore struct {
	issueFn   func(ctx context.Context, token, orderID string) error
	consumeFn func(ctx context.Context, token, orderID string) error
}

func (m *mockTokenStore) Issue(ctx context.Context, token, orderID string) error {
	if m.issueFn != nil {
		return m.issueFn(ctx, token, orderID)
	}
	return nil
}

func (m *mockTokenStore) Consume(ctx context.Context, token, orderID string) error {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, token, orderID)
	}
	return nil
}

type mockEventBus struct {
	publishCheckoutCreatedFn func(ctx context.Context, orderID string, checkoutID string) error
	publishOrderCompletedFn  func(ctx context.Context, orderID string) error
	publishPaymentFailedFn   func(ctx context.Context, orderID string, reason string) error
}

func (m *mockEventBus) PublishCheckoutCreated(ctx context.Context, orderID string, checkoutID string) error {
	if m.publishCheckoutCreatedFn != nil {
		return m.publishCheckoutCreatedFn(ctx, orderID, checkoutID)
	}
	return nil
}

func (m *mockEventBus) PublishOrderCompleted(ctx context.Context, orderID string) error {
	if m.publishOrderCompletedFn != nil {
		return m.publishOrderCompletedFn(ctx, orderID)
	}
	return nil
}

func (m *mockEventBus) PublishPaymentFailed(ctx context.Context, orderID string, reason string) error {
	if m.publishPaymentFailedFn != nil {
		return m.publishPaymentFailedFn(ctx, orderID, reason)
	}
	return nil
}

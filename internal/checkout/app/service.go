package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopkit/fisrv-gateway/internal/checkout/app/commands"
	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/metrics"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

// Service bundles the checkout use cases exposed over HTTP.
type Service struct {
	repo                  ports.OrderRepository
	client                ports.CheckoutClient
	logger                *slog.Logger
	settings              commands.Settings
	createCheckoutHandler commands.CreateCheckoutHandler
	applyWebhookHandler   commands.ApplyWebhookHandler
	handleReturnHandler   commands.HandleReturnHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	client ports.CheckoutClient,
	tokens ports.TokenStore,
	events ports.EventBus,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	settings commands.Settings,
) *Service {
	createCore := commands.NewCreateCheckoutCommandHandler(repo, client, tokens, events, settings)
	webhookCore := commands.NewApplyWebhookCommandHandler(repo, events, logger)

	return &Service{
		repo:                  repo,
		client:                client,
		logger:                logger,
		settings:              settings,
		createCheckoutHandler: commands.NewObservableCreateCheckoutHandler(createCore, logger, metrics),
		applyWebhookHandler:   commands.NewObservableApplyWebhookHandler(webhookCore, logger, metrics),
		handleReturnHandler:   commands.NewHandleReturnCommandHandler(repo, tokens, logger, settings),
	}
}

// PaymentResult is the contract returned to the storefront when it asks for
// a payment to be processed.
type PaymentResult struct {
	Result   string `json:"result"`
	Redirect string `json:"redirect,omitempty"`
}

// ProcessPayment creates (or reuses) a hosted-checkout link for the order.
// Provider and network failures never escape: they are logged against the
// order, the order is moved to failed with the error as the reason, and a
// failure result is returned for the buyer-facing page.
func (s *Service) ProcessPayment(ctx context.Context, orderID string, variant domain.MethodVariant) (PaymentResult, error) {
	result, err := s.createCheckoutHandler.Handle(ctx, commands.CreateCheckoutCommand{
		OrderID: orderID,
		Variant: variant,
	})
	if err != nil {
		// There is no order to fail when the ID itself is unknown.
		if !errors.Is(err, ports.ErrNotFound) {
			s.failOrder(ctx, orderID, err)
		}
		return PaymentResult{Result: "failure"}, err
	}

	return PaymentResult{Result: "success", Redirect: result.Redirect}, nil
}

func (s *Service) failOrder(ctx context.Context, orderID string, cause error) {
	s.logger.ErrorContext(ctx, "payment processing failed",
		"order_id", orderID,
		"error", cause,
	)
	if err := s.repo.UpdateStatus(ctx, orderID, domain.StatusFailed); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark order failed",
			"order_id", orderID,
			"error", err,
		)
		return
	}
	note := fmt.Sprintf("Payment processing failed: %s", cause)
	if err := s.repo.AppendNote(ctx, orderID, note); err != nil {
		s.logger.ErrorContext(ctx, "failed to append failure note",
			"order_id", orderID,
			"error", err,
		)
	}
}

// ApplyWebhook reconciles order state from a provider notification.
func (s *Service) ApplyWebhook(ctx context.Context, orderID string, event domain.WebhookEvent) (*domain.Order, error) {
	return s.applyWebhookHandler.Handle(ctx, commands.ApplyWebhookCommand{
		OrderID: orderID,
		Event:   event,
	})
}

// HandleReturn interprets a redirect back from the hosted payment page.
func (s *Service) HandleReturn(ctx context.Context, cmd commands.HandleReturnCommand) (*commands.ReturnResult, error) {
	return s.handleReturnHandler.Handle(ctx, cmd)
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return s.repo.List(ctx, filter)
}

// CreateOrder registers a new order supplied by the storefront.
func (s *Service) CreateOrder(ctx context.Context, order domain.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	if order.Status == "" {
		order.Status = domain.StatusPending
	}
	return s.repo.Create(ctx, order)
}

// Refund asks the provider to refund a paid order. Only orders paid through
// a gateway variant of this provider family are eligible.
func (s *Service) Refund(ctx context.Context, orderID string, amountMinor int64, reason string) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !domain.CanRefund(*order) {
		return fmt.Errorf("order %s is not refundable through this gateway", orderID)
	}

	refundID, err := s.client.Refund(ctx, s.settings.Credentials, order.Meta.CheckoutID, amountMinor, domain.ResolveCurrency(order.Currency))
	if err != nil {
		return fmt.Errorf("provider refund: %w", err)
	}

	note := fmt.Sprintf("Refund of %d minor units issued. refund_id=%s reason=%s", amountMinor, refundID, reason)
	if err := s.repo.AppendNote(ctx, orderID, note); err != nil {
		return fmt.Errorf("append refund note: %w", err)
	}

	s.logger.InfoContext(ctx, "refund issued",
		"order_id", orderID,
		"refund_id", refundID,
		"amount_minor", amountMinor,
	)
	return nil
}

// CheckCredentials probes the provider with candidate credentials.
func (s *Service) CheckCredentials(ctx context.Context, creds domain.Credentials) (*ports.CredentialCheck, error) {
	if !creds.Complete() {
		return &ports.CredentialCheck{Valid: false, Message: "api key, api secret and store id must all be set"}, nil
	}
	return s.client.ValidateCredentials(ctx, creds)
}

package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

// Settings is the gateway configuration shared by the checkout handlers.
// It is loaded once at startup and injected; handlers never read ambient
// state.
type Settings struct {
	Credentials    domain.Credentials
	SiteLanguage   string
	StorefrontBase string
	ServiceBase    string
	WebhookPath    string
	AutoComplete   bool
	LinkTTL        time.Duration
}

// CreateCheckoutCommand requests a hosted-checkout link for an order.
type CreateCheckoutCommand struct {
	OrderID string
	Variant domain.MethodVariant
}

func (c CreateCheckoutCommand) Validate() error {
	if c.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}
	return nil
}

// CheckoutResult is returned to the payment-processing caller.
type CheckoutResult struct {
	Redirect string
	Cached   bool
}

type CreateCheckoutHandler interface {
	Handle(ctx context.Context, cmd CreateCheckoutCommand) (*CheckoutResult, error)
}

type CreateCheckoutCommandHandler struct {
	repo     ports.OrderRepository
	client   ports.CheckoutClient
	tokens   ports.TokenStore
	events   ports.EventBus
	settings Settings
}

func NewCreateCheckoutCommandHandler(
	repo ports.OrderRepository,
	client ports.CheckoutClient,
	tokens ports.TokenStore,
	events ports.EventBus,
	settings Settings,
) *CreateCheckoutCommandHandler {
	return &CreateCheckoutCommandHandler{
		repo:     repo,
		client:   client,
		tokens:   tokens,
		events:   events,
		settings: settings,
	}
}

// Handle returns a redirect URL for the order, reusing the cached link when
// the order is still pending and the previous attempt has not expired. A
// reload of the payment page must not create a second hosted session.
func (h *CreateCheckoutCommandHandler) Handle(ctx context.Context, cmd CreateCheckoutCommand) (*CheckoutResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if link, ok := h.cachedLink(*order); ok {
		return &CheckoutResult{Redirect: link, Cached: true}, nil
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	if err := h.tokens.Issue(ctx, token, order.ID); err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	req, err := domain.BuildRequest(*order, domain.RequestParams{
		Credentials:    h.settings.Credentials,
		Variant:        cmd.Variant,
		Token:          token,
		SiteLanguage:   h.settings.SiteLanguage,
		StorefrontBase: h.settings.StorefrontBase,
		ServiceBase:    h.settings.ServiceBase,
		WebhookPath:    h.settings.WebhookPath,
	})
	if err != nil {
		return nil, err
	}

	session, err := h.client.CreateSession(ctx, h.settings.Credentials, req)
	if err != nil {
		if domain.IsAuthFailure(err) {
			return nil, &domain.ConfigurationError{
				Method: cmd.Variant,
				Reason: "provider rejected the API credentials",
				Cause:  err,
			}
		}
		return nil, err
	}

	if err := h.repo.SetCheckoutSession(ctx, order.ID, *session); err != nil {
		return nil, fmt.Errorf("persist checkout session: %w", err)
	}

	note := fmt.Sprintf("Checkout link created. checkout_id=%s trace_id=%s url=%s",
		session.CheckoutID, session.TraceID, session.RedirectURL)
	if err := h.repo.AppendNote(ctx, order.ID, note); err != nil {
		return nil, fmt.Errorf("append order note: %w", err)
	}

	if err := h.events.PublishCheckoutCreated(ctx, order.ID, session.CheckoutID); err != nil {
		return &CheckoutResult{Redirect: session.RedirectURL},
			fmt.Errorf("checkout created but failed to publish event: %w", err)
	}

	return &CheckoutResult{Redirect: session.RedirectURL}, nil
}

func (h *CreateCheckoutCommandHandler) cachedLink(order domain.Order) (string, bool) {
	if order.Status != domain.StatusPending {
		return "", false
	}
	if order.Meta.RedirectURL == "" || order.Meta.LinkIssuedAt == nil {
		return "", false
	}
	if h.settings.LinkTTL > 0 && time.Since(*order.Meta.LinkIssuedAt) > h.settings.LinkTTL {
		return "", false
	}
	return order.Meta.RedirectURL, true
}

func generateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

package ports

import (
	"context"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
)

// CheckoutSession is the provider's answer to a created checkout: the
// hosted-page URL the buyer is redirected to plus the identifiers we keep
// for reconciliation and audit.
type CheckoutSession struct {
	CheckoutID  string
	RedirectURL string
	TraceID     string
}

// CredentialCheck is the outcome of probing candidate credentials.
type CredentialCheck struct {
	Valid   bool
	Message string
}

// CheckoutClient is the payment-provider integration point. Implementations
// are expected to surface *domain.ProviderError for provider-reported
// failures so callers can classify them.
type CheckoutClient interface {
	CreateSession(ctx context.Context, creds domain.Credentials, req domain.CheckoutRequest) (*CheckoutSession, error)
	Refund(ctx context.Context, creds domain.Credentials, checkoutID string, amountMinor int64, currency domain.Currency) (string, error)
	ValidateCredentials(ctx context.Context, creds domain.Credentials) (*CredentialCheck, error)
}

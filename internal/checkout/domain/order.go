package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusOnHold     OrderStatus = "on-hold"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusFailed     OrderStatus = "failed"
	StatusCancelled  OrderStatus = "cancelled"
)

// Billing is the customer snapshot sent to the payment provider.
type Billing struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// OrderLine is a single purchased item on an order.
type OrderLine struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	Quantity       int    `json:"quantity"`
	LineTotalMinor int64  `json:"line_total_minor"`
}

// ProviderMeta holds the hosted-checkout identifiers attached to an order
// after a session has been created. Events is the webhook history, newest
// first, and is only ever prepended to.
type ProviderMeta struct {
	CheckoutID   string         `json:"checkout_id,omitempty"`
	RedirectURL  string         `json:"redirect_url,omitempty"`
	TraceID      string         `json:"trace_id,omitempty"`
	LinkIssuedAt *time.Time     `json:"link_issued_at,omitempty"`
	Events       []WebhookEvent `json:"events,omitempty"`
}

// Order represents a purchase managed by the storefront. All monetary
// amounts are integer minor units in the order's currency.
type Order struct {
	ID             string       `json:"id"`
	OrderKey       string       `json:"order_key"`
	Currency       string       `json:"currency"`
	TotalMinor     int64        `json:"total_minor"`
	SubtotalMinor  int64        `json:"subtotal_minor"`
	TaxMinor       int64        `json:"tax_minor"`
	ShippingMinor  int64        `json:"shipping_minor"`
	Billing        Billing      `json:"billing"`
	Lines          []OrderLine  `json:"lines"`
	Status         OrderStatus  `json:"status"`
	PaymentMethod  string       `json:"payment_method"`
	PaidAt         *time.Time   `json:"paid_at,omitempty"`
	Meta           ProviderMeta `json:"meta"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("order id is required")
	}
	if strings.TrimSpace(o.Currency) == "" {
		return errors.New("currency is required")
	}
	if o.TotalMinor < 0 || o.SubtotalMinor < 0 || o.TaxMinor < 0 || o.ShippingMinor < 0 {
		return errors.New("amounts must be non-negative")
	}
	return nil
}

// IsTerminal indicates whether the order has reached a final state.
// Terminal orders must never be transitioned by provider events.
func (o Order) IsTerminal() bool {
	switch o.Status {
	case StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsPaid reports whether a payment has been captured for the order.
func (o Order) IsPaid() bool {
	return o.PaidAt != nil
}

// ReceivedURL is the storefront "thank you" page for this order.
func (o Order) ReceivedURL(storefrontBase string) string {
	return fmt.Sprintf("%s/order-received/%s?key=%s",
		strings.TrimSuffix(storefrontBase, "/"), o.ID, url.QueryEscape(o.OrderKey))
}

// PayURL is the storefront "pay for this order" page, used to retry payment.
func (o Order) PayURL(storefrontBase string) string {
	return fmt.Sprintf("%s/order-pay/%s?pay_for_order=true&key=%s",
		strings.TrimSuffix(storefrontBase, "/"), o.ID, url.QueryEscape(o.OrderKey))
}

package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Amount carries the order totals in integer minor units.
type Amount struct {
	TotalMinor    int64 `json:"total_minor"`
	SubtotalMinor int64 `json:"subtotal_minor"`
	TaxMinor      int64 `json:"tax_minor"`
	ShippingMinor int64 `json:"shipping_minor"`
}

// BasketItem is one hosted-page line item. Per-line tax and shipping stay
// zero; the order-level amounts carry the true totals.
type BasketItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	Quantity       int    `json:"quantity"`
	LineTotalMinor int64  `json:"line_total_minor"`
}

// CheckoutRequest is the outbound payload describing a single payment
// attempt. It is built fresh per attempt and never persisted.
type CheckoutRequest struct {
	MerchantTransactionID string       `json:"merchant_transaction_id"`
	StoreID               string       `json:"store_id"`
	Amount                Amount       `json:"amount"`
	Currency              Currency     `json:"currency"`
	Locale                Locale       `json:"locale"`
	SuccessURL            string       `json:"success_url"`
	FailureURL            string       `json:"failure_url"`
	WebhookURL            string       `json:"webhook_url"`
	PreselectedMethod     string       `json:"preselected_method,omitempty"`
	Billing               Billing      `json:"billing"`
	Items                 []BasketItem `json:"items"`
}

// RequestParams are the inputs, beyond the order itself, needed to build a
// checkout request.
type RequestParams struct {
	Credentials    Credentials
	Variant        MethodVariant
	Token          string
	SiteLanguage   string
	StorefrontBase string
	ServiceBase    string
	WebhookPath    string
}

// BuildRequest assembles a provider-ready checkout request from an order
// snapshot. It has no side effects; the anti-forgery token is generated by
// the caller so each build stays a pure function of its inputs.
func BuildRequest(order Order, p RequestParams) (CheckoutRequest, error) {
	if !p.Credentials.Complete() {
		return CheckoutRequest{}, &ConfigurationError{
			Method: p.Variant,
			Reason: "api key, api secret and store id must all be set",
		}
	}
	if err := order.Validate(); err != nil {
		return CheckoutRequest{}, err
	}
	if strings.TrimSpace(p.Token) == "" {
		return CheckoutRequest{}, fmt.Errorf("anti-forgery token is required")
	}

	successURL := appendQuery(order.ReceivedURL(p.StorefrontBase), url.Values{
		"token":                []string{p.Token},
		"transaction_approved": []string{"true"},
	})

	// The failure URL keeps a trailing separator so the provider can append
	// its own parameters without producing a malformed URL.
	failureURL := appendQuery(order.PayURL(p.StorefrontBase), url.Values{
		"token":                []string{p.Token},
		"transaction_approved": []string{"false"},
		"wc_order_id":          []string{order.ID},
	}) + "&"

	webhookURL := appendQuery(
		strings.TrimSuffix(p.ServiceBase, "/")+p.WebhookPath,
		url.Values{
			"token":       []string{p.Token},
			"wc_order_id": []string{order.ID},
		},
	)

	items := make([]BasketItem, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, BasketItem{
			ID:             line.ID,
			Name:           line.Name,
			UnitPriceMinor: line.UnitPriceMinor,
			Quantity:       line.Quantity,
			LineTotalMinor: line.LineTotalMinor,
		})
	}

	return CheckoutRequest{
		MerchantTransactionID: order.ID,
		StoreID:               p.Credentials.StoreID,
		Amount: Amount{
			TotalMinor:    order.TotalMinor,
			SubtotalMinor: order.SubtotalMinor,
			TaxMinor:      order.TaxMinor,
			ShippingMinor: order.ShippingMinor,
		},
		Currency:          ResolveCurrency(order.Currency),
		Locale:            ResolveLocale(p.SiteLanguage),
		SuccessURL:        successURL,
		FailureURL:        failureURL,
		WebhookURL:        webhookURL,
		PreselectedMethod: p.Variant.Preselected(),
		Billing:           order.Billing,
		Items:             items,
	}, nil
}

func appendQuery(rawURL string, params url.Values) string {
	separator := "?"
	if strings.Contains(rawURL, "?") {
		separator = "&"
	}
	return rawURL + separator + params.Encode()
}

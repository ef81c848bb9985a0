// Package fisrv implements the hosted-checkout provider client over the
// provider's REST API. Requests are HMAC-signed per the provider's message
// signature scheme.
package fisrv

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

const (
	productionBaseURL = "https://prod.api.fisrv.example.com/checkouts/v1"
	sandboxBaseURL    = "https://cert.api.fisrv.example.com/checkouts/v1"

	defaultTimeout = 30 * time.Second
)

// Config controls which provider environment the client talks to.
type Config struct {
	Production bool
	// BaseURL overrides the environment URL, used in tests.
	BaseURL string
	Timeout time.Duration
}

// Client is the HTTP implementation of ports.CheckoutClient.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg Config) *Client {
	baseURL := sandboxBaseURL
	if cfg.Production {
		baseURL = productionBaseURL
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// CreateSession submits a checkout request and returns the hosted-page
// session. Provider rejections come back as *domain.ProviderError.
func (c *Client) CreateSession(ctx context.Context, creds domain.Credentials, req domain.CheckoutRequest) (*ports.CheckoutSession, error) {
	body, err := json.Marshal(toWire(req))
	if err != nil {
		return nil, fmt.Errorf("encode checkout request: %w", err)
	}

	var resp sessionResponse
	if err := c.do(ctx, creds, http.MethodPost, "/sessions", body, &resp); err != nil {
		return nil, err
	}

	if resp.CheckoutID == "" || resp.RedirectURL == "" {
		return nil, fmt.Errorf("provider response missing checkout id or redirect url")
	}

	return &ports.CheckoutSession{
		CheckoutID:  resp.CheckoutID,
		RedirectURL: resp.RedirectURL,
		TraceID:     resp.TraceID,
	}, nil
}

// Refund issues a full or partial refund for a completed checkout.
func (c *Client) Refund(ctx context.Context, creds domain.Credentials, checkoutID string, amountMinor int64, currency domain.Currency) (string, error) {
	body, err := json.Marshal(map[string]any{
		"amountMinor": amountMinor,
		"currency":    currency,
	})
	if err != nil {
		return "", fmt.Errorf("encode refund request: %w", err)
	}

	var resp refundResponse
	path := fmt.Sprintf("/sessions/%s/refunds", checkoutID)
	if err := c.do(ctx, creds, http.MethodPost, path, body, &resp); err != nil {
		return "", err
	}
	return resp.RefundID, nil
}

// ValidateCredentials probes the provider with the candidate credentials
// and reports whether they are accepted.
func (c *Client) ValidateCredentials(ctx context.Context, creds domain.Credentials) (*ports.CredentialCheck, error) {
	err := c.do(ctx, creds, http.MethodGet, "/stores/"+creds.StoreID, nil, nil)
	if err == nil {
		return &ports.CredentialCheck{Valid: true, Message: "credentials accepted by the provider"}, nil
	}
	if domain.IsAuthFailure(err) {
		return &ports.CredentialCheck{Valid: false, Message: "provider rejected the credentials"}, nil
	}
	return nil, err
}

func (c *Client) do(ctx context.Context, creds domain.Credentials, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}

	clientRequestID := uuid.NewString()
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Api-Key", creds.APIKey)
	httpReq.Header.Set("Client-Request-Id", clientRequestID)
	httpReq.Header.Set("Timestamp", timestamp)
	httpReq.Header.Set("Message-Signature", sign(creds, clientRequestID, timestamp, body))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call provider: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read provider response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return providerError(httpResp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode provider response: %w", err)
		}
	}
	return nil
}

// sign computes the provider message signature: base64 of an HMAC-SHA256
// over apiKey + clientRequestId + timestamp + body, keyed by the API secret.
func sign(creds domain.Credentials, clientRequestID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(creds.APISecret))
	mac.Write([]byte(creds.APIKey))
	mac.Write([]byte(clientRequestID))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func providerError(statusCode int, body []byte) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)
	if payload.Message == "" {
		payload.Message = http.StatusText(statusCode)
	}
	return &domain.ProviderError{
		StatusCode: statusCode,
		Code:       payload.Code,
		Message:    payload.Message,
	}
}

type sessionResponse struct {
	CheckoutID  string `json:"checkoutId"`
	RedirectURL string `json:"redirectionUrl"`
	TraceID     string `json:"traceId"`
}

type refundResponse struct {
	RefundID string `json:"refundId"`
}

type wireAmount struct {
	TotalMinor    int64  `json:"totalMinor"`
	SubtotalMinor int64  `json:"subtotalMinor"`
	TaxMinor      int64  `json:"taxMinor"`
	ShippingMinor int64  `json:"shippingMinor"`
	Currency      string `json:"currency"`
}

type wireBilling struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

type wireItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UnitPriceMinor int64  `json:"unitPriceMinor"`
	Quantity       int    `json:"quantity"`
	LineTotalMinor int64  `json:"lineTotalMinor"`
	TaxMinor       int64  `json:"taxMinor"`
	ShippingMinor  int64  `json:"shippingMinor"`
}

type wireCheckout struct {
	StoreID               string      `json:"storeId"`
	MerchantTransactionID string      `json:"merchantTransactionId"`
	TransactionAmount     wireAmount  `json:"transactionAmount"`
	Locale                string      `json:"locale"`
	SuccessURL            string      `json:"successUrl"`
	FailureURL            string      `json:"failureUrl"`
	WebhookURL            string      `json:"webhookUrl"`
	PreselectedMethod     string      `json:"preselectedPaymentMethod,omitempty"`
	Billing               wireBilling `json:"billing"`
	Basket                []wireItem  `json:"basket"`
}

func toWire(req domain.CheckoutRequest) wireCheckout {
	items := make([]wireItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, wireItem{
			ID:             item.ID,
			Name:           item.Name,
			UnitPriceMinor: item.UnitPriceMinor,
			Quantity:       item.Quantity,
			LineTotalMinor: item.LineTotalMinor,
			// Per-line tax and shipping stay zero; the transaction amount
			// carries the order-level totals.
		})
	}

	return wireCheckout{
		StoreID:               req.StoreID,
		MerchantTransactionID: req.MerchantTransactionID,
		TransactionAmount: wireAmount{
			TotalMinor:    req.Amount.TotalMinor,
			SubtotalMinor: req.Amount.SubtotalMinor,
			TaxMinor:      req.Amount.TaxMinor,
			ShippingMinor: req.Amount.ShippingMinor,
			Currency:      string(req.Currency),
		},
		Locale:            string(req.Locale),
		SuccessURL:        req.SuccessURL,
		FailureURL:        req.FailureURL,
		WebhookURL:        req.WebhookURL,
		PreselectedMethod: req.PreselectedMethod,
		Billing: wireBilling{
			Name:       req.Billing.Name,
			Email:      req.Billing.Email,
			Address1:   req.Billing.Address1,
			Address2:   req.Billing.Address2,
			City:       req.Billing.City,
			Country:    req.Billing.Country,
			PostalCode: req.Billing.PostalCode,
		},
		Basket: items,
	}
}

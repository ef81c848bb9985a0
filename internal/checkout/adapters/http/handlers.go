package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopkit/fisrv-gateway/internal/checkout/app"
	"github.com/shopkit/fisrv-gateway/internal/checkout/app/commands"
	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

// Handler exposes HTTP endpoints for checkout operations.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// WebhookPath is the fixed ingress path the provider posts transaction
// events to. The checkout request builder embeds it in every webhook URL.
const WebhookPath = "/v1/checkout/events"

// Register binds the checkout handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/orders", h.handleOrders)
	mux.HandleFunc("/v1/orders/", h.handleOrderByID)
	mux.HandleFunc(WebhookPath, h.handleWebhook)
	mux.HandleFunc("/v1/checkout/return", h.handleReturn)
	mux.HandleFunc("/v1/checkout/health", h.handleCredentialCheck)
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createOrder(w, r)
	case http.MethodGet:
		h.listOrders(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/v1/orders/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if strings.HasSuffix(trimmed, "/checkout") {
		id := strings.TrimSuffix(strings.TrimSuffix(trimmed, "/checkout"), "/")
		id = strings.TrimSuffix(id, "/")
		if id == "" {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.createCheckout(w, r, id)
		return
	}

	if strings.HasSuffix(trimmed, "/refund") {
		id := strings.TrimSuffix(strings.TrimSuffix(trimmed, "/refund"), "/")
		if id == "" {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.refundOrder(w, r, id)
		return
	}

	id := strings.TrimSuffix(trimmed, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.getOrder(w, r, id)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	if err := h.service.CreateOrder(r.Context(), order); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"order": order})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, id string) {
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.OrderStatus(statusParam)
		filter.Status = &status
	}

	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil {
			filter.Page = page
		}
	}

	if pageSizeParam := r.URL.Query().Get("page_size"); pageSizeParam != "" {
		if pageSize, err := strconv.Atoi(pageSizeParam); err == nil {
			filter.PageSize = pageSize
		}
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// createCheckout is the payment-processing boundary. Provider failures are
// converted into a structured failure result here; the buyer only ever sees
// a generic notice.
func (h *Handler) createCheckout(w http.ResponseWriter, r *http.Request, id string) {
	var payload struct {
		Method string `json:"method"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
	}

	variant := domain.MethodHostedPage
	if payload.Method != "" {
		variant = domain.MethodVariant(payload.Method)
	}

	result, err := h.service.ProcessPayment(r.Context(), id, variant)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"result": result.Result,
			"notice": "The payment could not be started. Please try again.",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) refundOrder(w http.ResponseWriter, r *http.Request, id string) {
	var payload struct {
		AmountMinor int64  `json:"amount_minor"`
		Reason      string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.service.Refund(r.Context(), id, payload.AmountMinor, payload.Reason); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"result": "refunded"})
}

// handleWebhook is the provider event ingress. Any processing failure is
// reported as 403 so the provider can apply its own retry policy.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	orderID := r.URL.Query().Get("wc_order_id")
	if orderID == "" {
		writeError(w, http.StatusForbidden, "wc_order_id is required")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusForbidden, "unreadable body")
		return
	}

	var event domain.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusForbidden, "malformed event payload")
		return
	}
	event.Raw = body
	event.ReceivedAt = time.Now().UTC()

	order, err := h.service.ApplyWebhook(r.Context(), orderID, event)
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
		"event":    event.TransactionStatus,
	})
}

// handleReturn serves both redirect-back entry points. A bad token fails
// closed: nothing is mutated and the response carries only a rejection.
func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	cmd := commands.HandleReturnCommand{
		OrderID:    query.Get("wc_order_id"),
		Token:      query.Get("token"),
		Approved:   query.Get("transaction_approved") == "true",
		Message:    query.Get("message"),
		Code:       query.Get("code"),
		CheckoutID: query.Get("checkout_id"),
	}

	result, err := h.service.HandleReturn(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidToken) {
			writeJSON(w, http.StatusForbidden, map[string]any{"result": "rejected"})
			return
		}
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result": "ok",
		"status": result.Order.Status,
		"notice": result.Notice,
	})
}

// handleCredentialCheck probes the provider with candidate credentials and
// reports a human-readable verdict.
func (h *Handler) handleCredentialCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	creds := domain.Credentials{
		APIKey:    query.Get("api_key"),
		APISecret: query.Get("api_secret"),
		StoreID:   query.Get("store_id"),
	}

	check, err := h.service.CheckCredentials(r.Context(), creds)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":   check.Valid,
		"message": check.Message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

// HandleReturnCommand describes a buyer navigating back from the hosted
// payment page. The same decision procedure serves both entry points
// (pay-for-order page and checkout page).
type HandleReturnCommand struct {
	OrderID    string
	Token      string
	Approved   bool
	Message    string
	Code       string
	CheckoutID string
}

// ReturnResult tells the storefront what to show the buyer.
type ReturnResult struct {
	Order  *domain.Order
	Notice string
}

type HandleReturnHandler interface {
	Handle(ctx context.Context, cmd HandleReturnCommand) (*ReturnResult, error)
}

type HandleReturnCommandHandler struct {
	repo     ports.OrderRepository
	tokens   ports.TokenStore
	logger   *slog.Logger
	settings Settings
}

func NewHandleReturnCommandHandler(
	repo ports.OrderRepository,
	tokens ports.TokenStore,
	logger *slog.Logger,
	settings Settings,
) *HandleReturnCommandHandler {
	return &HandleReturnCommandHandler{
		repo:     repo,
		tokens:   tokens,
		logger:   logger,
		settings: settings,
	}
}

// Handle validates the anti-forgery token before trusting anything else in
// the request. A missing or mismatched token fails closed: no order state
// is touched and ports.ErrInvalidToken is returned.
func (h *HandleReturnCommandHandler) Handle(ctx context.Context, cmd HandleReturnCommand) (*ReturnResult, error) {
	if cmd.Token == "" {
		return nil, ports.ErrInvalidToken
	}
	if err := h.tokens.Consume(ctx, cmd.Token, cmd.OrderID); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if cmd.Approved {
		return h.handleApproved(ctx, order)
	}
	return h.handleFailed(ctx, order, cmd)
}

func (h *HandleReturnCommandHandler) handleApproved(ctx context.Context, order *domain.Order) (*ReturnResult, error) {
	if order.IsTerminal() {
		h.logger.InfoContext(ctx, "return ignored for terminal order",
			"order_id", order.ID,
			"order_status", order.Status,
		)
		return &ReturnResult{Order: order}, nil
	}

	target := domain.StatusProcessing
	if h.settings.AutoComplete {
		if err := h.repo.MarkPaid(ctx, order.ID); err != nil {
			return nil, fmt.Errorf("mark order paid: %w", err)
		}
		target = domain.StatusCompleted
	}

	if err := h.repo.UpdateStatus(ctx, order.ID, target); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if err := h.repo.AppendNote(ctx, order.ID, fmt.Sprintf("Checkout updated order to %s.", target)); err != nil {
		return nil, fmt.Errorf("append order note: %w", err)
	}

	h.logger.InfoContext(ctx, "approved return applied",
		"order_id", order.ID,
		"new_status", target,
	)

	order.Status = target
	return &ReturnResult{Order: order}, nil
}

func (h *HandleReturnCommandHandler) handleFailed(ctx context.Context, order *domain.Order, cmd HandleReturnCommand) (*ReturnResult, error) {
	if order.IsTerminal() {
		h.logger.InfoContext(ctx, "return ignored for terminal order",
			"order_id", order.ID,
			"order_status", order.Status,
		)
		return &ReturnResult{Order: order}, nil
	}

	if err := h.repo.UpdateStatus(ctx, order.ID, domain.StatusPending); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	notice := "The payment was not completed. Please try again."
	if cmd.Message != "" {
		notice = fmt.Sprintf("The payment was not completed: %s", cmd.Message)
		if cmd.Code != "" {
			notice = fmt.Sprintf("%s (code %s)", notice, cmd.Code)
		}
	}
	if err := h.repo.AppendNote(ctx, order.ID, fmt.Sprintf("Payment attempt failed. %s", notice)); err != nil {
		return nil, fmt.Errorf("append order note: %w", err)
	}

	checkoutID := cmd.CheckoutID
	if checkoutID == "" {
		checkoutID = "unknown"
	}
	h.logger.WarnContext(ctx, "payment attempt failed on return",
		"order_id", order.ID,
		"checkout_id", checkoutID,
		"provider_message", cmd.Message,
		"provider_code", cmd.Code,
	)

	order.Status = domain.StatusPending
	return &ReturnResult{Order: order, Notice: notice}, nil
}

package domain

import (
	"encoding/json"
	"time"
)

// TransactionStatus is the provider's view of a checkout transaction as
// reported on webhook deliveries and redirect-back navigations.
type TransactionStatus string

const (
	TxWaiting          TransactionStatus = "WAITING"
	TxPartial          TransactionStatus = "PARTIAL"
	TxApproved         TransactionStatus = "APPROVED"
	TxProcessingFailed TransactionStatus = "PROCESSING_FAILED"
	TxValidationFailed TransactionStatus = "VALIDATION_FAILED"
	TxDeclined         TransactionStatus = "DECLINED"
)

// Transition maps a provider transaction status onto the local order
// lifecycle. MarkPaid indicates the payment-complete side effect must run
// before the status change. Apply is false for unrecognized statuses, which
// are logged but never transition the order.
type Transition struct {
	Target   OrderStatus
	MarkPaid bool
	Apply    bool
}

// TransitionFor resolves the order transition for a provider status.
func TransitionFor(status TransactionStatus) Transition {
	switch status {
	case TxWaiting:
		return Transition{Target: StatusOnHold, Apply: true}
	case TxPartial:
		return Transition{Target: StatusProcessing, Apply: true}
	case TxApproved:
		return Transition{Target: StatusCompleted, MarkPaid: true, Apply: true}
	case TxProcessingFailed, TxValidationFailed:
		return Transition{Target: StatusFailed, Apply: true}
	case TxDeclined:
		return Transition{Target: StatusCancelled, Apply: true}
	default:
		return Transition{}
	}
}

// WebhookEvent is a single provider notification. Raw carries the full
// provider payload verbatim for auditability.
type WebhookEvent struct {
	TransactionStatus TransactionStatus `json:"transactionStatus"`
	CheckoutID        string            `json:"checkoutId,omitempty"`
	TraceID           string            `json:"traceId,omitempty"`
	ApprovalCode      string            `json:"approvalCode,omitempty"`
	ReceivedAt        time.Time         `json:"receivedAt"`
	Raw               json.RawMessage   `json:"raw,omitempty"`
}

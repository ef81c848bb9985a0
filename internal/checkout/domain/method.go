package domain

import "strings"

// methodPrefix is shared by every gateway variant this integration owns.
// It is also how refund eligibility recognizes orders paid through us.
const methodPrefix = "fisrv"

// MethodVariant distinguishes the configured gateway options. All variants
// share one capability set; they differ only in the payment method
// pre-selected on the hosted page.
type MethodVariant string

const (
	MethodHostedPage MethodVariant = "fisrv"
	MethodCards      MethodVariant = "fisrv_cards"
	MethodApplePay   MethodVariant = "fisrv_applepay"
	MethodGooglePay  MethodVariant = "fisrv_googlepay"
)

// Preselected returns the provider payment-method code the hosted page
// should open with, or empty for the generic variant.
func (m MethodVariant) Preselected() string {
	switch m {
	case MethodCards:
		return "cards"
	case MethodApplePay:
		return "applePay"
	case MethodGooglePay:
		return "googlePay"
	default:
		return ""
	}
}

// Title is the human-readable name used in merchant-facing messages.
func (m MethodVariant) Title() string {
	switch m {
	case MethodCards:
		return "Fisrv Checkout (Cards)"
	case MethodApplePay:
		return "Fisrv Checkout (Apple Pay)"
	case MethodGooglePay:
		return "Fisrv Checkout (Google Pay)"
	default:
		return "Fisrv Checkout"
	}
}

// Credentials are the merchant secrets required to talk to the provider.
type Credentials struct {
	APIKey    string
	APISecret string
	StoreID   string
}

// Complete reports whether every credential field is non-empty. A gateway
// variant is only offered to buyers when this holds.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.APIKey) != "" &&
		strings.TrimSpace(c.APISecret) != "" &&
		strings.TrimSpace(c.StoreID) != ""
}

// IsProviderMethod reports whether a recorded payment method name belongs
// to this gateway family. Used to gate refunds.
func IsProviderMethod(name string) bool {
	return strings.HasPrefix(name, methodPrefix)
}

// CanRefund reports whether a refund may be offered for the order.
func CanRefund(o Order) bool {
	return o.IsPaid() && IsProviderMethod(o.PaymentMethod)
}

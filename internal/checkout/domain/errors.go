package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ConfigurationError signals missing or rejected merchant credentials.
// It is surfaced to the merchant with the failing payment method so the
// gateway settings can be corrected.
type ConfigurationError struct {
	Method MethodVariant
	Reason string
	Cause  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s configuration error: %s", e.Method.Title(), e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// ProviderError is any failure reported by the checkout provider.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
}

// AuthFailure reports whether the provider rejected the merchant
// credentials rather than the request itself.
func (e *ProviderError) AuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsAuthFailure checks an error chain for a credential rejection.
func IsAuthFailure(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.AuthFailure()
}

// Package providers holds deterministic in-process adapters for the
// onboarding collaborators: KYC, brokerage, two-factor provisioning, wallet
// signature verification and wallet generation. Outcomes are configured, not
// random, so every flow is reproducible in tests and local runs.
package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorCategory is the normalized failure taxonomy for provider calls.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorBadData        ErrorCategory = "bad_data"
	ErrorProviderOutage ErrorCategory = "provider_outage"
	ErrorNotFound       ErrorCategory = "not_found"
)

// ProviderError wraps a provider failure. Business rejections are never
// errors; they are reported as result statuses.
type ProviderError struct {
	Category   ErrorCategory
	ProviderID string
	Message    string
	Underlying error
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.ProviderID, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.ProviderID, e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

func newProviderError(category ErrorCategory, providerID, message string, underlying error) *ProviderError {
	return &ProviderError{Category: category, ProviderID: providerID, Message: message, Underlying: underlying}
}

// IsRetryable reports whether replaying the call may succeed.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category == ErrorTimeout || pe.Category == ErrorProviderOutage
	}
	return false
}

// simulateLatency sleeps for d or until ctx is done.
func simulateLatency(ctx context.Context, providerID string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return newProviderError(ErrorTimeout, providerID, "call abandoned", ctx.Err())
	}
}

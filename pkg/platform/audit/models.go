package audit

import (
	"context"
	"time"

	id "onboarding/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// consent acceptance, identity verification, account opening.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to account protection.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine progress with no regulatory weight.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventOnboardingInitialized AuditEvent = "onboarding_initialized"
	EventConsentsAccepted      AuditEvent = "consents_accepted"
	EventProfileSubmitted      AuditEvent = "profile_submitted"
	EventKYCSubmitted          AuditEvent = "kyc_submitted"
	EventKYCStatusChanged      AuditEvent = "kyc_status_changed"
	EventWalletLinked          AuditEvent = "wallet_linked"
	EventBrokerAccountCreated  AuditEvent = "broker_account_created"
	EventTwoFactorEnabled      AuditEvent = "two_factor_enabled"
	EventTwoFactorSkipped      AuditEvent = "two_factor_skipped"
	EventPreferencesSaved      AuditEvent = "preferences_saved"
	EventOnboardingCompleted   AuditEvent = "onboarding_completed"
	EventOnboardingReset       AuditEvent = "onboarding_reset"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventConsentsAccepted:     CategoryCompliance,
	EventProfileSubmitted:     CategoryCompliance,
	EventKYCSubmitted:         CategoryCompliance,
	EventKYCStatusChanged:     CategoryCompliance,
	EventWalletLinked:         CategoryCompliance,
	EventBrokerAccountCreated: CategoryCompliance,
	EventOnboardingCompleted:  CategoryCompliance,
	EventOnboardingReset:      CategoryCompliance,

	EventTwoFactorEnabled: CategorySecurity,
	EventTwoFactorSkipped: CategorySecurity,

	EventOnboardingInitialized: CategoryOperations,
	EventPreferencesSaved:      CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from the onboarding state machine to capture key actions.
// It is transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    id.UserID     `json:"user_id"`
	Action    string        `json:"action"`
	Step      string        `json:"step,omitempty"`
	Decision  string        `json:"decision,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	// ActorID is set when someone other than the user acted, e.g. an operator reset.
	ActorID  string `json:"actor_id,omitempty"`
	ClientIP string `json:"client_ip,omitempty"`
	Device   string `json:"device,omitempty"`
}

// Store persists audit events. Implementations backed by a database join the
// caller's transaction when one is present in the context.
type Store interface {
	Append(ctx context.Context, event Event) error
}

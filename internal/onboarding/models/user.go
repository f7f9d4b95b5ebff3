package models

import (
	"slices"
	"time"

	"onboarding/internal/onboarding/jurisdiction"
	id "onboarding/pkg/domain"
)

// UserAggregate is the single consistency boundary for one user's onboarding.
//
// Invariants:
//   - Onboarding.CompletedSteps only grows, except through Reset
//   - Onboarding.CurrentStep is derived by RecomputeCurrentStep, never set directly
//   - each sub-record is written only by its own step (KYC also by status polling)
//   - Reset clears progress and keeps every sub-record
type UserAggregate struct {
	UID          id.UserID                 `json:"uid"`
	Email        string                    `json:"email"`
	Locale       string                    `json:"locale"`
	Jurisdiction jurisdiction.Jurisdiction `json:"jurisdiction,omitempty"`
	Onboarding   Progress                  `json:"onboarding"`
	Consents     *Consents                 `json:"consents,omitempty"`
	Profile      *Profile                  `json:"profile,omitempty"`
	KYC          *KYC                      `json:"kyc,omitempty"`
	Wallet       *Wallet                   `json:"wallet,omitempty"`
	Broker       *Broker                   `json:"broker,omitempty"`
	Security     *Security                 `json:"security,omitempty"`
	Preferences  *Preferences              `json:"preferences,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// Progress is the onboarding progress block.
type Progress struct {
	CurrentStep    Step       `json:"current_step"`
	CompletedSteps []Step     `json:"completed_steps"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	LastActivityAt time.Time  `json:"last_activity_at"`
}

// NewUserAggregate builds a fresh aggregate positioned at the welcome step.
func NewUserAggregate(uid id.UserID, email, locale string, now time.Time) *UserAggregate {
	return &UserAggregate{
		UID:    uid,
		Email:  email,
		Locale: locale,
		Onboarding: Progress{
			CurrentStep:    StepWelcome,
			CompletedSteps: []Step{},
			LastActivityAt: now,
		},
		CreatedAt: now,
	}
}

// IsStepCompleted reports whether step is recorded in completedSteps.
func (u *UserAggregate) IsStepCompleted(step Step) bool {
	return slices.Contains(u.Onboarding.CompletedSteps, step)
}

// MissingBefore returns the first gated step before step that is not yet
// completed, or "" when all prerequisites are met.
func (u *UserAggregate) MissingBefore(step Step) Step {
	for _, prior := range step.Before() {
		if !u.IsStepCompleted(prior) {
			return prior
		}
	}
	return ""
}

// MarkStepCompleted appends step to the completion log once and advances the
// current step. Completing preferences finishes onboarding and stamps
// CompletedAt the first time only.
func (u *UserAggregate) MarkStepCompleted(step Step, now time.Time) {
	if !u.IsStepCompleted(step) {
		u.Onboarding.CompletedSteps = append(u.Onboarding.CompletedSteps, step)
	}
	if step == StepPreferences && u.allGatedCompleted() {
		u.Onboarding.Completed = true
		if u.Onboarding.CompletedAt == nil {
			t := now
			u.Onboarding.CompletedAt = &t
		}
	}
	u.RecomputeCurrentStep()
}

// Touch records activity without changing progress.
func (u *UserAggregate) Touch(now time.Time) {
	u.Onboarding.LastActivityAt = now
}

// RecomputeCurrentStep derives CurrentStep from CompletedSteps.
func (u *UserAggregate) RecomputeCurrentStep() {
	switch {
	case u.Onboarding.Completed:
		u.Onboarding.CurrentStep = StepCompleted
	case len(u.Onboarding.CompletedSteps) == 0:
		u.Onboarding.CurrentStep = StepWelcome
	default:
		u.Onboarding.CurrentStep = StepCompleted
		for _, s := range GatedSteps {
			if !u.IsStepCompleted(s) {
				u.Onboarding.CurrentStep = s
				break
			}
		}
	}
}

// Reset returns progress to the welcome step. Sub-records are preserved.
func (u *UserAggregate) Reset(now time.Time) {
	u.Onboarding.CompletedSteps = []Step{}
	u.Onboarding.Completed = false
	u.Onboarding.CompletedAt = nil
	u.Onboarding.CurrentStep = StepWelcome
	u.Onboarding.LastActivityAt = now
}

// PreferencesOrDefault never returns nil.
func (u *UserAggregate) PreferencesOrDefault() Preferences {
	if u.Preferences == nil {
		return DefaultPreferences()
	}
	return *u.Preferences
}

func (u *UserAggregate) allGatedCompleted() bool {
	for _, s := range GatedSteps {
		if !u.IsStepCompleted(s) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so stores never hand out shared state.
func (u *UserAggregate) Clone() *UserAggregate {
	if u == nil {
		return nil
	}
	c := *u
	c.Onboarding.CompletedSteps = slices.Clone(u.Onboarding.CompletedSteps)
	if c.Onboarding.CompletedSteps == nil {
		c.Onboarding.CompletedSteps = []Step{}
	}
	c.Onboarding.CompletedAt = cloneTime(u.Onboarding.CompletedAt)
	c.Consents = u.Consents.Clone()
	c.Profile = u.Profile.Clone()
	c.KYC = u.KYC.Clone()
	c.Wallet = u.Wallet.Clone()
	c.Broker = u.Broker.Clone()
	c.Security = u.Security.Clone()
	c.Preferences = u.Preferences.Clone()
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

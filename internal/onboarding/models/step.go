package models

import "slices"

// Step names one stage of the fixed onboarding sequence.
type Step string

const (
	StepWelcome     Step = "welcome"
	StepConsents    Step = "consents"
	StepProfile     Step = "profile"
	StepKYC         Step = "kyc"
	StepWallet      Step = "wallet"
	StepBroker      Step = "broker"
	StepSecurity    Step = "security"
	StepPreferences Step = "preferences"
	StepCompleted   Step = "completed"
)

// GatedSteps lists the steps a user must complete, in order. Welcome is the
// entry marker and Completed the terminal marker; neither is ever recorded in
// completedSteps.
var GatedSteps = []Step{
	StepConsents,
	StepProfile,
	StepKYC,
	StepWallet,
	StepBroker,
	StepSecurity,
	StepPreferences,
}

// Index returns the position of s in GatedSteps, or -1.
func (s Step) Index() int {
	return slices.Index(GatedSteps, s)
}

// IsGated reports whether s is a step that can be completed.
func (s Step) IsGated() bool {
	return s.Index() >= 0
}

// Before returns every gated step strictly earlier than s.
func (s Step) Before() []Step {
	i := s.Index()
	if i <= 0 {
		return nil
	}
	return GatedSteps[:i]
}

func (s Step) String() string {
	return string(s)
}

// ParseStep accepts any step name, including the welcome and completed markers.
func ParseStep(v string) (Step, bool) {
	s := Step(v)
	if s == StepWelcome || s == StepCompleted || s.IsGated() {
		return s, true
	}
	return "", false
}

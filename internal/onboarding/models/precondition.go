package models

import (
	"fmt"

	dErrors "onboarding/pkg/domain-errors"
)

// Operation distinguishes the operations that share a step.
type Operation string

const (
	OpSubmit  Operation = "submit"
	OpKYCPoll Operation = "kyc_status"
	OpSkip    Operation = "skip"
)

// Attempt describes an operation a caller wants to run against an aggregate.
type Attempt struct {
	Step            Step
	Op              Operation
	GeneratedWallet bool
}

// Decision is the evaluator's verdict. Missing names the first unmet
// prerequisite step when one applies.
type Decision struct {
	Allowed bool
	Reason  string
	Missing Step
}

// Err converts a denial into a PreconditionFailed error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return dErrors.New(dErrors.CodePreconditionFailed, d.Reason)
}

func allow() Decision {
	return Decision{Allowed: true}
}

func denyMissing(step Step) Decision {
	return Decision{
		Reason:  fmt.Sprintf("step %s must be completed first", step),
		Missing: step,
	}
}

// Evaluate decides whether attempt may run against u. It is pure: the store
// calls it again under the per-user lock before any write.
//
// Ordering: a step needs every earlier step completed. Two gates differ:
// a server-generated wallet skips the KYC prerequisite, and broker always
// needs KYC approved regardless of how the wallet was linked. A KYC status
// poll only needs an existing KYC record.
func Evaluate(u *UserAggregate, attempt Attempt) Decision {
	if u == nil {
		return Decision{Reason: "user not initialized"}
	}
	if !attempt.Step.IsGated() {
		return Decision{Reason: fmt.Sprintf("unknown step %q", attempt.Step)}
	}
	op := attempt.Op
	if op == "" {
		op = OpSubmit
	}

	switch {
	case op == OpKYCPoll:
		if attempt.Step != StepKYC {
			return Decision{Reason: "status polling is only available for kyc"}
		}
		if u.KYC == nil {
			return Decision{Reason: "kyc has not been started", Missing: StepKYC}
		}
		return allow()

	case op == OpSkip:
		if attempt.Step != StepSecurity {
			return Decision{Reason: fmt.Sprintf("step %s cannot be skipped", attempt.Step)}
		}

	case attempt.Step == StepWallet && attempt.GeneratedWallet:
		for _, prior := range []Step{StepConsents, StepProfile} {
			if !u.IsStepCompleted(prior) {
				return denyMissing(prior)
			}
		}
		return allow()

	case attempt.Step == StepWallet:
		if missing := u.MissingBefore(StepWallet); missing != "" {
			return denyMissing(missing)
		}
		if !u.KYC.IsApproved() {
			return Decision{Reason: "kyc must be approved before linking an external wallet", Missing: StepKYC}
		}
		return allow()

	case attempt.Step == StepBroker:
		if !u.KYC.IsApproved() {
			return Decision{Reason: "kyc must be approved before opening a brokerage account", Missing: StepKYC}
		}
	}

	if missing := u.MissingBefore(attempt.Step); missing != "" {
		return denyMissing(missing)
	}
	return allow()
}

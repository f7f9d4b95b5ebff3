package service

import (
	"context"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	audit "onboarding/pkg/platform/audit"
	"onboarding/pkg/requestcontext"
)

// StartKYC submits the profile for verification. An approved result
// completes the step immediately; pending and requires_more leave it open
// for polling or resubmission. The KYC record is written either way.
func (s *Service) StartKYC(ctx context.Context, uid id.UserID) (_ *models.UserAggregate, err error) {
	ctx, span := s.startSpan(ctx, "StartKYC", uid)
	defer func() { endSpan(span, err) }()

	attempt := models.Attempt{Step: models.StepKYC}
	u, err := s.load(ctx, uid, attempt)
	if err != nil {
		return nil, err
	}
	if u.Profile == nil {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "profile data is missing")
	}

	now := requestcontext.Now(ctx)
	switch {
	case kycReusable(u):
		if u.IsStepCompleted(models.StepKYC) {
			return u, nil
		}
		return s.applyStep(ctx, uid, models.StepUpdate{
			Attempt: attempt,
			Mutate:  completeOnly(models.StepKYC, now),
		}, audit.Event{
			Action:   string(audit.EventKYCSubmitted),
			Decision: string(models.KYCStatusApproved),
			Reason:   "existing verification reused",
		})
	case kycInFlight(u):
		return u, nil
	}

	profile := *u.Profile
	res, err := callCollaborator(ctx, s, CollaboratorKYC, func(ctx context.Context) (models.KYCResult, error) {
		return s.collab.KYC.Submit(ctx, uid, profile)
	})
	if err != nil {
		return nil, err
	}
	if err := checkKYCResult(res); err != nil {
		return nil, err
	}

	return s.applyStep(ctx, uid, models.StepUpdate{
		Attempt: attempt,
		Mutate: func(u *models.UserAggregate) error {
			u.KYC = models.NewKYC(res, now)
			if res.Status == models.KYCStatusApproved {
				u.MarkStepCompleted(models.StepKYC, now)
			}
			u.Touch(now)
			return nil
		},
	}, audit.Event{
		Action:   string(audit.EventKYCSubmitted),
		Decision: string(res.Status),
		Reason:   res.RejectionReason,
	})
}

// PollKYC re-queries the provider for an existing verification. A
// transition into approved completes the step once the earlier steps are
// done; rejected records the reason and leaves the step open. Polling an
// approved record changes nothing.
func (s *Service) PollKYC(ctx context.Context, uid id.UserID) (_ *models.UserAggregate, err error) {
	ctx, span := s.startSpan(ctx, "PollKYC", uid)
	defer func() { endSpan(span, err) }()

	attempt := models.Attempt{Step: models.StepKYC, Op: models.OpKYCPoll}
	u, err := s.load(ctx, uid, attempt)
	if err != nil {
		return nil, err
	}

	if u.KYC.IsApproved() {
		return u, nil
	}
	now := requestcontext.Now(ctx)

	reference := u.KYC.Reference
	res, err := callCollaborator(ctx, s, CollaboratorKYC, func(ctx context.Context) (models.KYCResult, error) {
		return s.collab.KYC.Status(ctx, uid, reference)
	})
	if err != nil {
		return nil, err
	}
	if err := checkKYCResult(res); err != nil {
		return nil, err
	}

	var from models.KYCStatus
	return s.applyStep(ctx, uid, models.StepUpdate{
		Attempt: attempt,
		Mutate: func(u *models.UserAggregate) error {
			from = u.KYC.Status
			u.KYC.ApplyResult(res, now)
			if res.Status == models.KYCStatusApproved && u.MissingBefore(models.StepKYC) == "" {
				u.MarkStepCompleted(models.StepKYC, now)
			}
			u.Touch(now)
			return nil
		},
		AfterWrite: func(ctx context.Context, u *models.UserAggregate) error {
			if from == u.KYC.Status {
				return nil
			}
			return s.emit(ctx, uid, audit.Event{
				Action:   string(audit.EventKYCStatusChanged),
				Step:     string(models.StepKYC),
				Decision: string(u.KYC.Status),
				Reason:   u.KYC.RejectionReason,
			})
		},
	}, audit.Event{})
}

// checkKYCResult rejects provider answers the state machine cannot interpret.
func checkKYCResult(res models.KYCResult) error {
	if !res.Status.IsValid() {
		return dErrors.New(dErrors.CodeCollaboratorFailure, "kyc provider returned an unknown status")
	}
	for _, name := range []string{models.CheckIdentity, models.CheckAddress, models.CheckSanctions} {
		if _, ok := res.Checks[name]; !ok {
			return dErrors.New(dErrors.CodeCollaboratorFailure, "kyc provider omitted the "+name+" check")
		}
	}
	return nil
}

package service

import (
	"context"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	audit "onboarding/pkg/platform/audit"
	"onboarding/pkg/requestcontext"
)

// CreateBrokerAccount opens the brokerage sub-account. Both active and
// pending_review complete the step; a rejection fails the call and writes
// nothing.
func (s *Service) CreateBrokerAccount(ctx context.Context, uid id.UserID, req *models.BrokerRequest) (_ *models.UserAggregate, err error) {
	ctx, span := s.startSpan(ctx, "CreateBrokerAccount", uid)
	defer func() { endSpan(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	attempt := models.Attempt{Step: models.StepBroker}
	u, err := s.load(ctx, uid, attempt)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if brokerReusable(u) {
		if u.IsStepCompleted(models.StepBroker) {
			return u, nil
		}
		return s.applyStep(ctx, uid, models.StepUpdate{
			Attempt: attempt,
			Mutate:  completeOnly(models.StepBroker, now),
		}, audit.Event{
			Action:   string(audit.EventBrokerAccountCreated),
			Decision: string(u.Broker.Status),
			Reason:   "existing sub-account reused",
		})
	}
	if u.Profile == nil {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "profile data is missing")
	}

	app := models.BrokerApplication{
		Profile:            *u.Profile,
		Jurisdiction:       string(u.Jurisdiction),
		KYCReference:       u.KYC.Reference,
		ConsentDataSharing: *req.ConsentDataSharing,
		ConsentOmnibus:     *req.ConsentOmnibus,
	}
	res, err := callCollaborator(ctx, s, CollaboratorBroker, func(ctx context.Context) (models.BrokerResult, error) {
		return s.collab.Broker.CreateSubAccount(ctx, uid, app)
	})
	if err != nil {
		return nil, err
	}

	switch {
	case res.Status == models.BrokerStatusRejected:
		s.logger.WarnContext(ctx, "brokerage application rejected",
			"user_id", uid,
			"reason", res.Reason,
			"request_id", requestcontext.RequestID(ctx),
		)
		msg := "brokerage application was rejected"
		if res.Reason != "" {
			msg += ": " + res.Reason
		}
		return nil, dErrors.New(dErrors.CodePreconditionFailed, msg)
	case !res.Status.Completes():
		return nil, dErrors.New(dErrors.CodeCollaboratorFailure, "broker provider returned an unknown status")
	case res.SubAccountID == "":
		return nil, dErrors.New(dErrors.CodeCollaboratorFailure, "broker provider returned no sub-account id")
	}

	return s.applyStep(ctx, uid, models.StepUpdate{
		Attempt: attempt,
		Mutate: func(u *models.UserAggregate) error {
			u.Broker = &models.Broker{
				Provider:     res.Provider,
				SubAccountID: res.SubAccountID,
				Status:       res.Status,
				CreatedAt:    now,
				LastSyncAt:   now,
			}
			u.MarkStepCompleted(models.StepBroker, now)
			u.Touch(now)
			return nil
		},
	}, audit.Event{
		Action:   string(audit.EventBrokerAccountCreated),
		Decision: string(res.Status),
		Reason:   res.Reason,
	})
}

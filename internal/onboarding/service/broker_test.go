package service

import (
	"context"

	"go.uber.org/mock/gomock"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	audit "onboarding/pkg/platform/audit"
)

func (s *ServiceSuite) TestCreateBrokerAccount() {
	s.Run("active account completes the step", func() {
		uid := id.UserID("u-broker")
		s.advanceTo(uid, models.StepBroker)

		s.broker.EXPECT().CreateSubAccount(gomock.Any(), uid, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.UserID, app models.BrokerApplication) (models.BrokerResult, error) {
				s.Equal("kyc-u-broker", app.KYCReference)
				s.Equal("DE", app.Jurisdiction)
				s.True(app.ConsentOmnibus)
				return models.BrokerResult{Provider: "test", SubAccountID: "sa-1", Status: models.BrokerStatusActive}, nil
			})
		u, err := s.service.CreateBrokerAccount(s.ctx, uid, brokerRequest())
		s.Require().NoError(err)
		s.Equal("sa-1", u.Broker.SubAccountID)
		s.Equal(s.now, u.Broker.CreatedAt)
		s.Equal(models.StepSecurity, u.Onboarding.CurrentStep)

		again, err := s.service.CreateBrokerAccount(s.ctx, uid, brokerRequest())
		s.Require().NoError(err)
		s.Equal(u, again)
		s.Equal(1, s.countActions(uid, audit.EventBrokerAccountCreated))
	})

	s.Run("pending review also completes the step", func() {
		uid := id.UserID("u-broker-review")
		s.advanceTo(uid, models.StepBroker)
		s.broker.EXPECT().CreateSubAccount(gomock.Any(), uid, gomock.Any()).
			Return(models.BrokerResult{SubAccountID: "sa-2", Status: models.BrokerStatusPendingReview}, nil)
		u, err := s.service.CreateBrokerAccount(s.ctx, uid, brokerRequest())
		s.Require().NoError(err)
		s.Equal(models.BrokerStatusPendingReview, u.Broker.Status)
		s.True(u.IsStepCompleted(models.StepBroker))
	})

	s.Run("rejection fails without writing", func() {
		uid := id.UserID("u-broker-rejected")
		s.advanceTo(uid, models.StepBroker)
		s.broker.EXPECT().CreateSubAccount(gomock.Any(), uid, gomock.Any()).
			Return(models.BrokerResult{Status: models.BrokerStatusRejected, Reason: "restricted jurisdiction"}, nil)
		_, err := s.service.CreateBrokerAccount(s.ctx, uid, brokerRequest())
		s.requireCode(err, dErrors.CodePreconditionFailed)
		s.Contains(dErrors.MessageOf(err), "restricted jurisdiction")

		u, err := s.service.GetState(s.ctx, uid)
		s.Require().NoError(err)
		s.Nil(u.Broker)
		s.Equal(models.StepBroker, u.Onboarding.CurrentStep)
	})

	s.Run("missing sub-account id is a collaborator failure", func() {
		uid := id.UserID("u-broker-empty")
		s.advanceTo(uid, models.StepBroker)
		s.broker.EXPECT().CreateSubAccount(gomock.Any(), uid, gomock.Any()).
			Return(models.BrokerResult{Status: models.BrokerStatusActive}, nil)
		_, err := s.service.CreateBrokerAccount(s.ctx, uid, brokerRequest())
		s.requireCode(err, dErrors.CodeCollaboratorFailure)
	})

	s.Run("both consents are required", func() {
		uid := id.UserID("u-broker-consent")
		s.advanceTo(uid, models.StepBroker)
		req := brokerRequest()
		req.ConsentOmnibus = boolPtr(false)
		_, err := s.service.CreateBrokerAccount(s.ctx, uid, req)
		s.requireCode(err, dErrors.CodeValidation)
	})
}

package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/audit/publishers/compliance"
)

func (s *ServiceSuite) TestCollaboratorFailureIsRetryable() {
	uid := id.UserID("u-collab")
	s.advanceTo(uid, models.StepKYC)

	s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).Return(models.KYCResult{}, errors.New("connection reset"))
	_, err := s.service.StartKYC(s.ctx, uid)
	s.requireCode(err, dErrors.CodeCollaboratorFailure)
	s.True(dErrors.Retryable(err))

	u, err := s.service.GetState(s.ctx, uid)
	s.Require().NoError(err)
	s.Nil(u.KYC)

	s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).Return(kycResult("ref-retry", models.KYCStatusApproved), nil)
	u, err = s.service.StartKYC(s.ctx, uid)
	s.Require().NoError(err)
	s.True(u.IsStepCompleted(models.StepKYC))
}

func (s *ServiceSuite) TestCollaboratorTimeout() {
	svc := s.newService(compliance.New(s.auditStore), WithCollaboratorTimeout(20*time.Millisecond))
	uid := id.UserID("u-slow")
	s.advanceTo(uid, models.StepBroker)

	s.broker.EXPECT().CreateSubAccount(gomock.Any(), uid, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ id.UserID, _ models.BrokerApplication) (models.BrokerResult, error) {
			<-ctx.Done()
			return models.BrokerResult{}, ctx.Err()
		})
	_, err := svc.CreateBrokerAccount(s.ctx, uid, brokerRequest())
	s.requireCode(err, dErrors.CodeCollaboratorFailure)
	s.Contains(dErrors.MessageOf(err), "timed out")
	s.ErrorIs(err, context.DeadlineExceeded)

	u, err := svc.GetState(s.ctx, uid)
	s.Require().NoError(err)
	s.Nil(u.Broker)
}

func (s *ServiceSuite) TestCircuitBreakerOpensAfterRepeatedFailures() {
	svc := s.newService(compliance.New(s.auditStore), WithBreakers(2, time.Hour))
	uid := id.UserID("u-breaker")
	s.advanceTo(uid, models.StepSecurity)

	s.twoFactor.EXPECT().Enable(gomock.Any(), uid, gomock.Any()).
		Return(models.TwoFAEnrollment{}, errors.New("provisioner down")).Times(2)
	for range 2 {
		_, _, err := svc.EnableTwoFactor(s.ctx, uid, &models.SecurityRequest{Method: "totp"})
		s.requireCode(err, dErrors.CodeCollaboratorFailure)
	}

	_, _, err := svc.EnableTwoFactor(s.ctx, uid, &models.SecurityRequest{Method: "totp"})
	s.requireCode(err, dErrors.CodeCollaboratorFailure)
	s.Contains(dErrors.MessageOf(err), "temporarily unavailable")

	s.Run("other collaborators are unaffected", func() {
		u, err := svc.SkipTwoFactor(s.ctx, uid)
		s.Require().NoError(err)
		s.True(u.IsStepCompleted(models.StepSecurity))
	})
}

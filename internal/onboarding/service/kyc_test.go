package service

import (
	"context"

	"go.uber.org/mock/gomock"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	audit "onboarding/pkg/platform/audit"
)

func (s *ServiceSuite) countActions(uid id.UserID, action audit.AuditEvent) int {
	n := 0
	for _, a := range s.auditStore.Actions(uid) {
		if a == string(action) {
			n++
		}
	}
	return n
}

func (s *ServiceSuite) TestStartKYCApproved() {
	uid := id.UserID("u-kyc")
	s.advanceTo(uid, models.StepKYC)

	s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ id.UserID, p models.Profile) (models.KYCResult, error) {
			s.Equal("Grace", p.FirstName)
			s.Equal("DE", p.Country)
			return kycResult("ref-1", models.KYCStatusApproved), nil
		})

	u, err := s.service.StartKYC(s.ctx, uid)
	s.Require().NoError(err)
	s.True(u.IsStepCompleted(models.StepKYC))
	s.Equal(models.StepWallet, u.Onboarding.CurrentStep)
	s.Equal("ref-1", u.KYC.Reference)
	s.Equal(s.now, *u.KYC.ApprovedAt)
	s.Len(u.KYC.Checks, 3)

	s.Run("replay does not call the provider again", func() {
		again, err := s.service.StartKYC(s.ctx, uid)
		s.Require().NoError(err)
		s.Equal(u, again)
		s.Equal(1, s.countActions(uid, audit.EventKYCSubmitted))
	})

	s.Run("poll on an approved record is a no-op", func() {
		again, err := s.service.PollKYC(s.ctx, uid)
		s.Require().NoError(err)
		s.Equal(u, again)
	})
}

func (s *ServiceSuite) TestStartKYCPendingThenPoll() {
	uid := id.UserID("u-kyc-pending")
	s.advanceTo(uid, models.StepKYC)

	s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).
		Return(kycResult("ref-p", models.KYCStatusPending), nil)
	u, err := s.service.StartKYC(s.ctx, uid)
	s.Require().NoError(err)
	s.Equal(models.KYCStatusPending, u.KYC.Status)
	s.False(u.IsStepCompleted(models.StepKYC))
	s.Equal(models.StepKYC, u.Onboarding.CurrentStep)

	s.Run("start while pending does not resubmit", func() {
		again, err := s.service.StartKYC(s.ctx, uid)
		s.Require().NoError(err)
		s.Equal(u, again)
	})

	s.Run("external wallet is blocked while pending", func() {
		_, err := s.service.LinkWallet(s.ctx, uid, externalWallet(uid, "k-pending"))
		s.requireCode(err, dErrors.CodePreconditionFailed)
	})

	s.Run("poll still pending records no transition", func() {
		s.kyc.EXPECT().Status(gomock.Any(), uid, "ref-p").
			Return(kycResult("ref-p", models.KYCStatusPending), nil)
		u, err := s.service.PollKYC(s.ctx, uid)
		s.Require().NoError(err)
		s.Equal(models.KYCStatusPending, u.KYC.Status)
		s.Zero(s.countActions(uid, audit.EventKYCStatusChanged))
	})

	s.Run("poll approved completes the step", func() {
		s.kyc.EXPECT().Status(gomock.Any(), uid, "ref-p").
			Return(kycResult("ref-p", models.KYCStatusApproved), nil)
		u, err := s.service.PollKYC(s.ctx, uid)
		s.Require().NoError(err)
		s.True(u.KYC.IsApproved())
		s.True(u.IsStepCompleted(models.StepKYC))
		s.Equal(models.StepWallet, u.Onboarding.CurrentStep)
		s.Equal(1, s.countActions(uid, audit.EventKYCStatusChanged))
	})
}

func (s *ServiceSuite) TestStartKYCPendingThenPollRejected() {
	uid := id.UserID("u-kyc-pending-rejected")
	s.advanceTo(uid, models.StepKYC)

	s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).
		Return(kycResult("ref-pr", models.KYCStatusPending), nil)
	_, err := s.service.StartKYC(s.ctx, uid)
	s.Require().NoError(err)

	s.Run("poll rejected records the reason and leaves the step open", func() {
		rejected := kycResult("ref-pr", models.KYCStatusRejected)
		rejected.RejectionReason = "doc expired"
		s.kyc.EXPECT().Status(gomock.Any(), uid, "ref-pr").Return(rejected, nil)

		u, err := s.service.PollKYC(s.ctx, uid)
		s.Require().NoError(err)
		s.Equal(models.KYCStatusRejected, u.KYC.Status)
		s.Equal("doc expired", u.KYC.RejectionReason)
		s.Require().NotNil(u.KYC.RejectedAt)
		s.Equal(s.now, *u.KYC.RejectedAt)
		s.False(u.IsStepCompleted(models.StepKYC))
		s.Equal(models.StepKYC, u.Onboarding.CurrentStep)
		s.Equal(1, s.countActions(uid, audit.EventKYCStatusChanged))
	})

	s.Run("start after rejection resubmits", func() {
		s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).
			Return(kycResult("ref-pr2", models.KYCStatusApproved), nil)
		u, err := s.service.StartKYC(s.ctx, uid)
		s.Require().NoError(err)
		s.Equal("ref-pr2", u.KYC.Reference)
		s.True(u.IsStepCompleted(models.StepKYC))
	})
}

func (s *ServiceSuite) TestPollKYCAfterResetDoesNotCompleteOutOfOrder() {
	uid := id.UserID("u-kyc-reset-pending")
	s.advanceTo(uid, models.StepKYC)

	s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).
		Return(kycResult("ref-rp", models.KYCStatusPending), nil)
	_, err := s.service.StartKYC(s.ctx, uid)
	s.Require().NoError(err)
	_, err = s.service.ResetOnboarding(s.ctx, uid, "ops@example.com", "")
	s.Require().NoError(err)

	s.kyc.EXPECT().Status(gomock.Any(), uid, "ref-rp").
		Return(kycResult("ref-rp", models.KYCStatusApproved), nil)
	u, err := s.service.PollKYC(s.ctx, uid)
	s.Require().NoError(err)
	s.True(u.KYC.IsApproved())
	s.False(u.IsStepCompleted(models.StepKYC))
	s.Equal(models.StepWelcome, u.Onboarding.CurrentStep)

	s.Run("kyc completes from the stored approval once earlier steps are redone", func() {
		s.complete(uid, models.StepConsents)
		s.complete(uid, models.StepProfile)
		u, err := s.service.StartKYC(s.ctx, uid)
		s.Require().NoError(err)
		s.True(u.IsStepCompleted(models.StepKYC))
		s.Equal(models.StepWallet, u.Onboarding.CurrentStep)
	})
}

func (s *ServiceSuite) TestStartKYCRejected() {
	uid := id.UserID("u-kyc-rejected")
	s.advanceTo(uid, models.StepKYC)

	rejected := kycResult("ref-r1", models.KYCStatusRejected)
	rejected.RejectionReason = "document expired"
	s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).Return(rejected, nil)

	u, err := s.service.StartKYC(s.ctx, uid)
	s.Require().NoError(err)
	s.Equal(models.KYCStatusRejected, u.KYC.Status)
	s.Equal("document expired", u.KYC.RejectionReason)
	s.NotNil(u.KYC.RejectedAt)
	s.False(u.IsStepCompleted(models.StepKYC))

	s.Run("resubmission starts a new case", func() {
		s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).
			Return(kycResult("ref-r2", models.KYCStatusApproved), nil)
		u, err := s.service.StartKYC(s.ctx, uid)
		s.Require().NoError(err)
		s.Equal("ref-r2", u.KYC.Reference)
		s.True(u.IsStepCompleted(models.StepKYC))
		s.Empty(u.KYC.RejectionReason)
	})
}

func (s *ServiceSuite) TestStartKYCMalformedResult() {
	uid := id.UserID("u-kyc-bad")
	s.advanceTo(uid, models.StepKYC)

	s.Run("unknown status", func() {
		s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).
			Return(models.KYCResult{Reference: "x", Status: "maybe"}, nil)
		_, err := s.service.StartKYC(s.ctx, uid)
		s.requireCode(err, dErrors.CodeCollaboratorFailure)
	})

	s.Run("pending result without sub-checks", func() {
		res := kycResult("x", models.KYCStatusPending)
		res.Checks = nil
		s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).Return(res, nil)
		_, err := s.service.StartKYC(s.ctx, uid)
		s.requireCode(err, dErrors.CodeCollaboratorFailure)
	})

	s.Run("missing sub-check", func() {
		res := kycResult("x", models.KYCStatusApproved)
		delete(res.Checks, models.CheckSanctions)
		s.kyc.EXPECT().Submit(gomock.Any(), uid, gomock.Any()).Return(res, nil)
		_, err := s.service.StartKYC(s.ctx, uid)
		s.requireCode(err, dErrors.CodeCollaboratorFailure)
	})

	u, err := s.service.GetState(s.ctx, uid)
	s.Require().NoError(err)
	s.Nil(u.KYC)
}

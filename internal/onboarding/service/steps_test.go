package service

import (
	"time"

	"go.uber.org/mock/gomock"

	"onboarding/internal/onboarding/jurisdiction"
	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	audit "onboarding/pkg/platform/audit"
	"onboarding/pkg/requestcontext"
)

// =============================================================================
// Ordering
// =============================================================================

// TestOutOfOrderStepsAreRejected runs every step against a freshly initialized
// user. Each one after consents must fail without writing anything and without
// reaching a collaborator; the controller fails the test on any unexpected call.
func (s *ServiceSuite) TestOutOfOrderStepsAreRejected() {
	uid := id.UserID("u-order")
	before := s.initUser(uid)

	attempts := map[string]func() error{
		"profile": func() error {
			_, err := s.service.SubmitProfile(s.ctx, uid, profileRequest())
			return err
		},
		"kyc": func() error {
			_, err := s.service.StartKYC(s.ctx, uid)
			return err
		},
		"kyc status": func() error {
			_, err := s.service.PollKYC(s.ctx, uid)
			return err
		},
		"external wallet": func() error {
			_, err := s.service.LinkWallet(s.ctx, uid, externalWallet(uid, "k1"))
			return err
		},
		"generated wallet": func() error {
			_, err := s.service.LinkWallet(s.ctx, uid, &models.WalletRequest{IsGenerated: true})
			return err
		},
		"broker": func() error {
			_, err := s.service.CreateBrokerAccount(s.ctx, uid, brokerRequest())
			return err
		},
		"enable 2fa": func() error {
			_, _, err := s.service.EnableTwoFactor(s.ctx, uid, &models.SecurityRequest{Method: "totp"})
			return err
		},
		"skip 2fa": func() error {
			_, err := s.service.SkipTwoFactor(s.ctx, uid)
			return err
		},
		"preferences": func() error {
			_, err := s.service.SubmitPreferences(s.ctx, uid, preferencesRequest("light"))
			return err
		},
	}
	for name, attempt := range attempts {
		s.Run(name, func() {
			s.requireCode(attempt(), dErrors.CodePreconditionFailed)
		})
	}

	after, err := s.service.GetState(s.ctx, uid)
	s.Require().NoError(err)
	s.Equal(before, after)
	s.Equal([]string{string(audit.EventOnboardingInitialized)}, s.auditStore.Actions(uid))
}

func (s *ServiceSuite) TestUninitializedUser() {
	_, err := s.service.SubmitConsents(s.ctx, "ghost", consentsRequest())
	s.requireCode(err, dErrors.CodeNotFound)
}

// =============================================================================
// Consents
// =============================================================================

func (s *ServiceSuite) TestSubmitConsents() {
	s.Run("all three accepted", func() {
		uid := id.UserID("u-consent")
		s.initUser(uid)
		u, err := s.service.SubmitConsents(s.ctx, uid, consentsRequest())
		s.Require().NoError(err)
		s.Equal(models.StepProfile, u.Onboarding.CurrentStep)
		s.Equal(s.legal.TOS, u.Consents.TOS.Version)
		s.Equal(s.legal.Risk, u.Consents.Risk.Version)
		s.Equal(s.now, u.Consents.Privacy.AcceptedAt)
	})

	s.Run("any missing or false acceptance is rejected and nothing is stored", func() {
		uid := id.UserID("u-consent-partial")
		s.initUser(uid)
		for _, req := range []*models.ConsentsRequest{
			{TOS: boolPtr(true), Privacy: boolPtr(true), Risk: boolPtr(false)},
			{TOS: boolPtr(true), Privacy: boolPtr(true)},
			{},
		} {
			_, err := s.service.SubmitConsents(s.ctx, uid, req)
			s.requireCode(err, dErrors.CodeValidation)
		}
		u, err := s.service.GetState(s.ctx, uid)
		s.Require().NoError(err)
		s.Nil(u.Consents)
		s.Empty(u.Onboarding.CompletedSteps)
	})

	s.Run("replay at the same versions writes nothing", func() {
		uid := id.UserID("u-consent-replay")
		s.initUser(uid)
		first, err := s.service.SubmitConsents(s.ctx, uid, consentsRequest())
		s.Require().NoError(err)

		again, err := s.service.SubmitConsents(s.ctx, uid, consentsRequest())
		s.Require().NoError(err)
		s.Equal(first, again)
		s.Equal([]string{
			string(audit.EventOnboardingInitialized),
			string(audit.EventConsentsAccepted),
		}, s.auditStore.Actions(uid))
	})
}

// =============================================================================
// Profile
// =============================================================================

func (s *ServiceSuite) TestSubmitProfile() {
	uid := id.UserID("u-profile")
	s.advanceTo(uid, models.StepProfile)

	s.Run("age boundary", func() {
		req := profileRequest()
		req.DateOfBirth = "2008-03-02" // turns 18 tomorrow
		_, err := s.service.SubmitProfile(s.ctx, uid, req)
		s.requireCode(err, dErrors.CodeValidation)

		req.DateOfBirth = "2008-03-01"
		u, err := s.service.SubmitProfile(s.ctx, uid, req)
		s.Require().NoError(err)
		s.Equal("2008-03-01", u.Profile.DateOfBirth)
	})

	s.Run("jurisdiction derived from country", func() {
		u, err := s.service.SubmitProfile(s.ctx, uid, profileRequest())
		s.Require().NoError(err)
		s.Equal(jurisdiction.DE, u.Jurisdiction)
		s.Equal(models.StepKYC, u.Onboarding.CurrentStep)
	})

	s.Run("explicit jurisdiction wins", func() {
		req := profileRequest()
		req.Jurisdiction = "EU"
		u, err := s.service.SubmitProfile(s.ctx, uid, req)
		s.Require().NoError(err)
		s.Equal(jurisdiction.EU, u.Jurisdiction)
	})

	s.Run("invalid fields leave the stored profile intact", func() {
		before, err := s.service.GetState(s.ctx, uid)
		s.Require().NoError(err)

		req := profileRequest()
		req.Experience = "guru"
		_, err = s.service.SubmitProfile(s.ctx, uid, req)
		s.requireCode(err, dErrors.CodeValidation)

		after, err := s.service.GetState(s.ctx, uid)
		s.Require().NoError(err)
		s.Equal(before, after)
	})
}

// =============================================================================
// Security
// =============================================================================

func (s *ServiceSuite) TestEnableTwoFactor() {
	uid := id.UserID("u-2fa")
	s.advanceTo(uid, models.StepSecurity)

	s.Run("provisioner without backup codes fails and writes nothing", func() {
		s.twoFactor.EXPECT().Enable(gomock.Any(), uid, models.TwoFAMethodTOTP).
			Return(models.TwoFAEnrollment{Method: models.TwoFAMethodTOTP, Secret: "S"}, nil)
		_, _, err := s.service.EnableTwoFactor(s.ctx, uid, &models.SecurityRequest{Method: "TOTP"})
		s.requireCode(err, dErrors.CodeCollaboratorFailure)

		u, err := s.service.GetState(s.ctx, uid)
		s.Require().NoError(err)
		s.Nil(u.Security)
	})

	s.Run("enrollment is returned but not stored", func() {
		s.twoFactor.EXPECT().Enable(gomock.Any(), uid, models.TwoFAMethodTOTP).
			Return(models.TwoFAEnrollment{Secret: "JBSWY3DPEHPK3PXP", BackupCodes: []string{"AAAA-BBBB", "CCCC-DDDD"}}, nil)
		u, enrollment, err := s.service.EnableTwoFactor(s.ctx, uid, &models.SecurityRequest{Method: "totp"})
		s.Require().NoError(err)
		s.Equal(models.TwoFAMethodTOTP, enrollment.Method)
		s.Len(enrollment.BackupCodes, 2)
		s.True(u.Security.TwoFA.Enabled)
		s.Equal(s.now, *u.Security.TwoFA.EnabledAt)
		s.Equal(models.StepPreferences, u.Onboarding.CurrentStep)
	})

	s.Run("skipping after enabling keeps the factor", func() {
		u, err := s.service.SkipTwoFactor(s.ctx, uid)
		s.Require().NoError(err)
		s.True(u.Security.TwoFA.Enabled)
		s.Nil(u.Security.TwoFA.SkippedAt)
		s.NotContains(s.auditStore.Actions(uid), string(audit.EventTwoFactorSkipped))
	})

	s.Run("invalid method", func() {
		_, _, err := s.service.EnableTwoFactor(s.ctx, uid, &models.SecurityRequest{Method: "sms"})
		s.requireCode(err, dErrors.CodeValidation)
	})
}

func (s *ServiceSuite) TestSkipTwoFactor() {
	uid := id.UserID("u-skip")
	s.advanceTo(uid, models.StepSecurity)

	u, err := s.service.SkipTwoFactor(s.ctx, uid)
	s.Require().NoError(err)
	s.False(u.Security.TwoFA.Enabled)
	s.NotNil(u.Security.TwoFA.SkippedAt)
	s.True(u.IsStepCompleted(models.StepSecurity))

	again, err := s.service.SkipTwoFactor(s.ctx, uid)
	s.Require().NoError(err)
	s.Equal(u, again)

	skips := 0
	for _, a := range s.auditStore.Actions(uid) {
		if a == string(audit.EventTwoFactorSkipped) {
			skips++
		}
	}
	s.Equal(1, skips)
}

// =============================================================================
// Preferences
// =============================================================================

func (s *ServiceSuite) TestSubmitPreferences() {
	uid := id.UserID("u-prefs")
	s.advanceTo(uid, models.StepPreferences)

	first, err := s.service.SubmitPreferences(s.ctx, uid, preferencesRequest("dark"))
	s.Require().NoError(err)
	s.True(first.Onboarding.Completed)
	s.Equal(models.StepCompleted, first.Onboarding.CurrentStep)
	s.Equal(s.now, *first.Onboarding.CompletedAt)
	s.Equal(models.QuoteCurrency("USDC"), first.Preferences.DefaultQuote)

	s.Run("resubmission updates preferences and keeps completion time", func() {
		later := s.now.Add(48 * time.Hour)
		ctx := requestcontext.WithTime(s.ctx, later)
		u, err := s.service.SubmitPreferences(ctx, uid, preferencesRequest("light"))
		s.Require().NoError(err)
		s.Equal(models.Theme("light"), u.Preferences.Theme)
		s.Equal(later, u.Preferences.UpdatedAt)
		s.Equal(s.now, *u.Onboarding.CompletedAt)
		s.Equal(later, u.Onboarding.LastActivityAt)
	})

	s.Run("completion is audited once", func() {
		completed := 0
		for _, a := range s.auditStore.Actions(uid) {
			if a == string(audit.EventOnboardingCompleted) {
				completed++
			}
		}
		s.Equal(1, completed)
	})

	s.Run("invalid theme", func() {
		_, err := s.service.SubmitPreferences(s.ctx, uid, preferencesRequest("neon"))
		s.requireCode(err, dErrors.CodeValidation)
	})
}

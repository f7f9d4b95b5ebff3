package service

import (
	"go.uber.org/mock/gomock"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	audit "onboarding/pkg/platform/audit"
)

func (s *ServiceSuite) expectVerify(key string, ok bool) {
	s.signatures.EXPECT().Verify(gomock.Any(), models.ChainSolana, key, "sig-"+key, gomock.Any()).Return(ok, nil)
}

func (s *ServiceSuite) TestLinkExternalWallet() {
	uid := id.UserID("u-wallet")
	s.advanceTo(uid, models.StepWallet)

	s.Run("message must be bound to the user", func() {
		req := externalWallet(uid, "k1")
		req.Message = "link my wallet"
		_, err := s.service.LinkWallet(s.ctx, uid, req)
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("failed signature is a validation error", func() {
		s.expectVerify("k1", false)
		_, err := s.service.LinkWallet(s.ctx, uid, externalWallet(uid, "k1"))
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("valid signature links the wallet", func() {
		s.expectVerify("k1", true)
		u, err := s.service.LinkWallet(s.ctx, uid, externalWallet(uid, "k1"))
		s.Require().NoError(err)
		s.Equal("k1", u.Wallet.PublicKey)
		s.False(u.Wallet.IsGenerated)
		s.Equal(s.now, u.Wallet.VerifiedAt)
		s.Equal(models.StepBroker, u.Onboarding.CurrentStep)
		s.Equal(1, s.countActions(uid, audit.EventWalletLinked))
	})

	s.Run("relinking the same key is a no-op", func() {
		s.expectVerify("k1", true)
		before, err := s.service.GetState(s.ctx, uid)
		s.Require().NoError(err)
		u, err := s.service.LinkWallet(s.ctx, uid, externalWallet(uid, "k1"))
		s.Require().NoError(err)
		s.Equal(before, u)
		s.Equal(1, s.countActions(uid, audit.EventWalletLinked))
	})
}

func (s *ServiceSuite) TestWalletKeyUniqueness() {
	alice, bob := id.UserID("u-alice"), id.UserID("u-bob")
	s.advanceTo(alice, models.StepWallet)
	s.advanceTo(bob, models.StepWallet)

	s.expectVerify("shared", true)
	_, err := s.service.LinkWallet(s.ctx, alice, externalWallet(alice, "shared"))
	s.Require().NoError(err)

	s.Run("another user cannot take a linked key", func() {
		req := externalWallet(bob, "shared")
		s.signatures.EXPECT().Verify(gomock.Any(), models.ChainSolana, "shared", req.Signature, req.Message).Return(true, nil)
		_, err := s.service.LinkWallet(s.ctx, bob, req)
		s.requireCode(err, dErrors.CodeConflict)

		u, err := s.service.GetState(s.ctx, bob)
		s.Require().NoError(err)
		s.Nil(u.Wallet)
	})

	s.Run("switching keys releases the old one", func() {
		s.expectVerify("alice-new", true)
		u, err := s.service.LinkWallet(s.ctx, alice, externalWallet(alice, "alice-new"))
		s.Require().NoError(err)
		s.Equal("alice-new", u.Wallet.PublicKey)

		req := externalWallet(bob, "shared")
		s.signatures.EXPECT().Verify(gomock.Any(), models.ChainSolana, "shared", req.Signature, req.Message).Return(true, nil)
		u, err = s.service.LinkWallet(s.ctx, bob, req)
		s.Require().NoError(err)
		s.Equal("shared", u.Wallet.PublicKey)
	})
}

func (s *ServiceSuite) TestLinkGeneratedWallet() {
	uid := id.UserID("u-gen")
	s.advanceTo(uid, models.StepKYC)

	s.Run("empty key from generator fails", func() {
		s.wallets.EXPECT().Generate(gomock.Any(), uid, models.ChainSolana).Return("  ", nil)
		_, err := s.service.LinkWallet(s.ctx, uid, &models.WalletRequest{IsGenerated: true})
		s.requireCode(err, dErrors.CodeCollaboratorFailure)
	})

	s.wallets.EXPECT().Generate(gomock.Any(), uid, models.ChainSolana).Return("gen-key", nil)
	u, err := s.service.LinkWallet(s.ctx, uid, &models.WalletRequest{IsGenerated: true})
	s.Require().NoError(err)
	s.True(u.Wallet.IsGenerated)
	s.Equal("gen-key", u.Wallet.PublicKey)
	s.True(u.IsStepCompleted(models.StepWallet))
	s.Equal(models.StepKYC, u.Onboarding.CurrentStep, "kyc is still outstanding")

	s.Run("retry reuses the generated key", func() {
		again, err := s.service.LinkWallet(s.ctx, uid, &models.WalletRequest{IsGenerated: true})
		s.Require().NoError(err)
		s.Equal(u, again)
	})

	s.Run("broker still requires approved kyc", func() {
		_, err := s.service.CreateBrokerAccount(s.ctx, uid, brokerRequest())
		s.requireCode(err, dErrors.CodePreconditionFailed)
	})
}

package service

import (
	"time"

	"onboarding/internal/onboarding/models"
)

// Replay guards. Each reports whether a step request can be answered from the
// stored aggregate without calling its collaborator again. They run once on
// the snapshot (to avoid a second provider call) and again inside Mutate
// under the lock (to avoid a second write when two retries race).

// consentsCurrent: all three documents already accepted at the current versions.
func consentsCurrent(u *models.UserAggregate, v models.LegalVersions) bool {
	c := u.Consents
	return c != nil && u.IsStepCompleted(models.StepConsents) &&
		c.TOS.Version == v.TOS && c.Privacy.Version == v.Privacy && c.Risk.Version == v.Risk
}

// kycReusable: an approved verification exists; resubmitting would only
// create a second provider case.
func kycReusable(u *models.UserAggregate) bool {
	return u.KYC.IsApproved()
}

// kycInFlight: the provider is still working on the last submission.
func kycInFlight(u *models.UserAggregate) bool {
	return u.KYC != nil && u.KYC.Status == models.KYCStatusPending
}

// brokerReusable: a sub-account was already opened.
func brokerReusable(u *models.UserAggregate) bool {
	b := u.Broker
	return b != nil && b.SubAccountID != "" && b.Status.Completes()
}

// generatedWalletReusable: the user already has a server-generated wallet,
// which is handed back instead of minting another key.
func generatedWalletReusable(u *models.UserAggregate, chain models.Chain) bool {
	w := u.Wallet
	return w != nil && w.IsGenerated && w.Chain == chain && w.PublicKey != ""
}

// walletLinked: this exact key is already linked to this user.
func walletLinked(u *models.UserAggregate, chain models.Chain, publicKey string) bool {
	w := u.Wallet
	return w != nil && u.IsStepCompleted(models.StepWallet) && w.Chain == chain && w.PublicKey == publicKey
}

// twoFactorEnabled: skipping would downgrade an enabled second factor.
func twoFactorEnabled(u *models.UserAggregate) bool {
	return u.Security != nil && u.Security.TwoFA.Enabled
}

// completeOnly is a Mutate that only records step completion, used when a
// replay guard finds the sub-record already in place after a reset.
func completeOnly(step models.Step, now time.Time) func(u *models.UserAggregate) error {
	return func(u *models.UserAggregate) error {
		if u.IsStepCompleted(step) {
			return models.ErrNoChange
		}
		u.MarkStepCompleted(step, now)
		u.Touch(now)
		return nil
	}
}

// Package store persists onboarding aggregates in memory or in PostgreSQL.
//
// Both implementations apply a models.StepUpdate the same way: lock the uid,
// re-run the step precondition on a private copy, mutate the copy, run the
// AfterWrite hook, then persist only the step's column group together with
// the progress columns. Updates for different steps of the same user
// therefore never overwrite each other's data.
package store

import (
	"onboarding/internal/onboarding/models"
)

// copyGroup copies the sub-record(s) owned by group from src into dst, along
// with the progress block. An empty group copies progress only.
func copyGroup(dst, src *models.UserAggregate, group models.Step) {
	dst.Onboarding = src.Onboarding
	switch group {
	case models.StepConsents:
		dst.Consents = src.Consents
	case models.StepProfile:
		dst.Profile = src.Profile
		dst.Jurisdiction = src.Jurisdiction
	case models.StepKYC:
		dst.KYC = src.KYC
	case models.StepWallet:
		dst.Wallet = src.Wallet
	case models.StepBroker:
		dst.Broker = src.Broker
	case models.StepSecurity:
		dst.Security = src.Security
	case models.StepPreferences:
		dst.Preferences = src.Preferences
	}
}

package service

import (
	"context"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	audit "onboarding/pkg/platform/audit"
)

// Store persists onboarding aggregates. Implementations return
// pkg/platform/sentinel errors; the service translates them.
type Store interface {
	// Create inserts u unless its uid exists, in which case the stored record
	// is returned unchanged and created is false. onCreate runs inside the
	// insert transaction. Another uid holding the same email yields
	// sentinel.ErrConflict.
	Create(ctx context.Context, u *models.UserAggregate, onCreate func(ctx context.Context, u *models.UserAggregate) error) (stored *models.UserAggregate, created bool, err error)
	FindByID(ctx context.Context, uid id.UserID) (*models.UserAggregate, error)
	FindByWalletKey(ctx context.Context, publicKey string) (*models.UserAggregate, error)
	ApplyStepUpdate(ctx context.Context, uid id.UserID, update models.StepUpdate) (*models.UserAggregate, error)
}

// KYCProvider verifies identity. A rejection is a status, not an error.
type KYCProvider interface {
	Submit(ctx context.Context, uid id.UserID, profile models.Profile) (models.KYCResult, error)
	Status(ctx context.Context, uid id.UserID, reference string) (models.KYCResult, error)
}

// BrokerProvider opens brokerage sub-accounts.
type BrokerProvider interface {
	CreateSubAccount(ctx context.Context, uid id.UserID, app models.BrokerApplication) (models.BrokerResult, error)
}

// TwoFactorProvisioner enrolls a second factor and issues backup codes.
type TwoFactorProvisioner interface {
	Enable(ctx context.Context, uid id.UserID, method models.TwoFAMethod) (models.TwoFAEnrollment, error)
}

// SignatureVerifier checks that signature over message was made by publicKey.
type SignatureVerifier interface {
	Verify(ctx context.Context, chain models.Chain, publicKey, signature, message string) (bool, error)
}

// WalletGenerator creates a custodial wallet and returns its public key.
type WalletGenerator interface {
	Generate(ctx context.Context, uid id.UserID, chain models.Chain) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
